// internal/wsupgrade/device.go
package wsupgrade

import (
	"context"
	"time"

	"github.com/steamicc/easyflash/internal/serialcmd"
)

// Device is the operator firmware's command line; *serialcmd.Client implements it.
type Device interface {
	SendAndRead(ctx context.Context, cmd string, wait, timeout time.Duration) (string, error)
	SendAndReadAny(ctx context.Context, cmd string, wait, timeout time.Duration) ([]byte, error)
	ReadLine(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

// Dialer opens a Device on a named port.
type Dialer interface {
	Dial(port string) (Device, error)
}

// SerialDialer dials through a serialcmd driver.
type SerialDialer struct {
	Opener serialcmd.Opener
}

func (d SerialDialer) Dial(port string) (Device, error) {
	c, err := serialcmd.Dial(d.Opener, port)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// probe opens and closes port.
func probe(d Dialer, port string) error {
	dev, err := d.Dial(port)
	if err != nil {
		return err
	}
	return dev.Close()
}
