// internal/serialcmd/errors.go
package serialcmd

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// ErrTimeout is returned when no complete answer arrived before the read deadline.
var ErrTimeout = errors.New("serial: read timeout")

// ErrClosed is returned by a Client used after Close.
var ErrClosed = errors.New("serial: port closed")

// OpenError reports a port that could not be opened or configured.
type OpenError struct {
	Port   string
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("serial: open %s: %s", e.Port, e.Reason)
	}
	return fmt.Sprintf("serial: open %s: %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports a failed command write.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("serial: write %q: %v", e.Command, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed read (not a timeout).
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("serial: read: %v", e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// openReason turns go.bug.st/serial error codes into readable text.
func openReason(err error) string {
	var code serial.PortErrorCode
	var ptr *serial.PortError
	var val serial.PortError
	switch {
	case errors.As(err, &ptr):
		code = ptr.Code()
	case errors.As(err, &val):
		code = val.Code()
	default:
		return ""
	}

	switch code {
	case serial.PortBusy:
		return "port is busy (already opened by another program)"
	case serial.PortNotFound:
		return "port not found (device unplugged?)"
	case serial.PermissionDenied:
		return "permission denied (check dialout/uucp group membership)"
	case serial.InvalidSerialPort:
		return "not a serial port"
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
		serial.InvalidStopBits, serial.InvalidTimeoutValue:
		return "unsupported port settings"
	default:
		return ""
	}
}
