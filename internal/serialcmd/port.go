// internal/serialcmd/port.go
package serialcmd

import (
	"fmt"
	"io"
	"time"
)

// Line settings of the operator firmware's CDC port. Fixed by the firmware.
const (
	BaudRate    = 115200
	DataBits    = 8
	PollTimeout = 10 * time.Millisecond
)

// Port is an opened serial device.
// Read returns (0, nil) when the polling timeout expires with no data.
type Port interface {
	io.ReadWriteCloser
	// Drain blocks until written bytes have left the output buffer.
	Drain() error
	// ResetInputBuffer discards unread input.
	ResetInputBuffer() error
}

// Driver names a serial backend.
type Driver string

const (
	DriverBugst    Driver = "bugst"
	DriverGoburrow Driver = "goburrow"
)

// Opener opens a port by name.
type Opener interface {
	Open(name string) (Port, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(name string) (Port, error)

func (f OpenerFunc) Open(name string) (Port, error) { return f(name) }

// NewOpener returns the opener for a driver.
func NewOpener(d Driver) (Opener, error) {
	switch d {
	case "", DriverBugst:
		return OpenerFunc(openBugst), nil
	case DriverGoburrow:
		return OpenerFunc(openGoburrow), nil
	default:
		return nil, fmt.Errorf("serial: unknown driver %q", d)
	}
}

// Probe opens and immediately closes a port.
func Probe(o Opener, name string) error {
	p, err := o.Open(name)
	if err != nil {
		return err
	}
	return p.Close()
}
