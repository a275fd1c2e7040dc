// internal/process/types.go
package process

import (
	"fmt"

	"github.com/steamicc/easyflash/internal/logsink"
)

// StreamTags decides which severity each output stream is logged with.
type StreamTags struct {
	Stdout logsink.Kind
	Stderr logsink.Kind
}

// DefaultStreamTags logs both streams as Info.
// openocd writes its normal progress to stderr, so stderr is not an error signal.
var DefaultStreamTags = StreamTags{Stdout: logsink.Info, Stderr: logsink.Info}

// LegacyStreamTags tags stderr Info and stdout Error.
// This mapping is most likely inverted; it is kept selectable for
// operators who rely on the old log colouring.
var LegacyStreamTags = StreamTags{Stdout: logsink.Error, Stderr: logsink.Info}

// Result is produced exactly once per Run.
type Result struct {
	// ExitCode is nil when the process was terminated by a signal.
	ExitCode *int
	Log      []logsink.Entry
}

// Success reports a normal exit with code 0.
func (r Result) Success() bool {
	return r.ExitCode != nil && *r.ExitCode == 0
}

// Summary is the human readable exit line appended after every run.
func (r Result) Summary() string {
	if r.ExitCode == nil {
		return "Exit code: none (terminated by signal)"
	}
	return fmt.Sprintf("Exit code: %d", *r.ExitCode)
}

// SpawnError means the program never started (not found, permission denied).
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitCode returns a pointer to code, for building Results in tests and fakes.
func ExitCode(code int) *int {
	return &code
}
