// internal/process/supervisor.go
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/steamicc/easyflash/internal/logsink"
)

const (
	// lineBuffer bounds the channel between the pipe readers and the collector.
	lineBuffer = 256

	maxLineBytes = 1024 * 1024

	defaultLinePrefix = "    "
)

// Config is immutable once the Supervisor is built.
type Config struct {
	Tags StreamTags

	// LinePrefix is prepended to every captured line (indentation under the step header).
	LinePrefix string

	// Dir is the working directory of the child. Empty means the current one.
	Dir string
}

// Supervisor runs one external program per call and collects its output.
// It never retries; retry policy belongs to the caller.
type Supervisor struct {
	cfg Config
}

func New(cfg Config) *Supervisor {
	if cfg.LinePrefix == "" {
		cfg.LinePrefix = defaultLinePrefix
	}
	return &Supervisor{cfg: cfg}
}

// Run spawns program with args and drains stdout and stderr concurrently.
//
// When live is non-nil every line is sent there as it arrives, followed by
// the exit summary line; Result.Log is then empty. Otherwise lines are
// buffered into Result.Log and the summary is appended before returning.
//
// ctx only stops delivery to live. It does not kill the child: a spawned
// flashing tool always runs to completion.
func (s *Supervisor) Run(ctx context.Context, program string, args []string, live chan<- logsink.Entry) (Result, error) {
	cmd := exec.Command(program, args...)
	cmd.Dir = s.cfg.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, &SpawnError{Program: program, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, &SpawnError{Program: program, Err: err}
	}

	slog.Debug("spawn", "program", program, "args", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return Result{}, &SpawnError{Program: program, Err: err}
	}

	lines := make(chan logsink.Entry, lineBuffer)
	drained := make(chan error, 1)

	var g errgroup.Group
	g.Go(func() error { return s.readLines(stdout, s.cfg.Tags.Stdout, lines) })
	g.Go(func() error { return s.readLines(stderr, s.cfg.Tags.Stderr, lines) })
	go func() {
		drained <- g.Wait()
		close(lines)
	}()

	var res Result
	deliver := func(e logsink.Entry) {
		if live == nil {
			res.Log = append(res.Log, e)
			return
		}
		select {
		case live <- e:
		case <-ctx.Done():
		}
	}

	for e := range lines {
		deliver(e)
	}

	// Both pipes hit EOF before Wait, so a full pipe buffer cannot block the child.
	if readErr := <-drained; readErr != nil {
		deliver(logsink.Warningf("output stream: %v", readErr))
	}

	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return Result{}, fmt.Errorf("wait %s: %w", program, waitErr)
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		slog.Warn("wait returned non-exit error", "program", program, "err", waitErr)
	}

	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		res.ExitCode = ExitCode(code)
	}

	summary := logsink.NewInfo(res.Summary())
	if !res.Success() {
		summary = logsink.NewWarning(res.Summary())
	}
	deliver(summary)

	slog.Debug("exit", "program", program, "summary", res.Summary())
	return res, nil
}

// Available reports whether program can be started with --version and exits 0.
// A missing executable is reported as (false, nil).
func (s *Supervisor) Available(ctx context.Context, program string) (bool, error) {
	err := exec.CommandContext(ctx, program, "--version").Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.Is(err, exec.ErrNotFound) || errors.As(err, &exitErr) {
		return false, nil
	}
	return false, &SpawnError{Program: program, Err: err}
}

func (s *Supervisor) readLines(r io.Reader, kind logsink.Kind, out chan<- logsink.Entry) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out <- logsink.Entry{Kind: kind, Text: s.cfg.LinePrefix + line, At: time.Now()}
	}
	if err := sc.Err(); err != nil {
		// Keep the pipe empty so the child never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
