// internal/flasherr/flasherr.go
package flasherr

import (
	"errors"
	"fmt"
)

// Kind classifies where a failure came from.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindExternalTool: spawn failure or non-zero / signal exit of the flashing tool.
	KindExternalTool
	// KindSerial: open, write, read or timeout failure on the serial line.
	KindSerial
	// KindProtocol: malformed or unexpected device response, unknown version or code.
	KindProtocol
	// KindFile: missing input image, copy or merge I/O failure.
	KindFile
	// KindPrecondition: missing port selection, missing required paths.
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindExternalTool:
		return "external tool"
	case KindSerial:
		return "serial"
	case KindProtocol:
		return "protocol"
	case KindFile:
		return "file"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Error tags a cause with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err. A nil err stays nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost Kind found in the chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
