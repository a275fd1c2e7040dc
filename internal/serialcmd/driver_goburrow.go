// internal/serialcmd/driver_goburrow.go
package serialcmd

import (
	"errors"

	"github.com/goburrow/serial"
)

// goburrowPort adapts github.com/goburrow/serial to Port.
// The library has no drain or flush calls; both are no-ops.
type goburrowPort struct {
	p serial.Port
}

func openGoburrow(name string) (Port, error) {
	p, err := serial.Open(&serial.Config{
		Address:  name,
		BaudRate: BaudRate,
		DataBits: DataBits,
		StopBits: 1,
		Parity:   "N",
		Timeout:  PollTimeout,
	})
	if err != nil {
		return nil, &OpenError{Port: name, Err: err}
	}
	return &goburrowPort{p: p}, nil
}

func (g *goburrowPort) Read(b []byte) (int, error) {
	n, err := g.p.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, nil
	}
	return n, err
}

func (g *goburrowPort) Write(b []byte) (int, error) { return g.p.Write(b) }

func (g *goburrowPort) Close() error { return g.p.Close() }

func (g *goburrowPort) Drain() error { return nil }

func (g *goburrowPort) ResetInputBuffer() error { return nil }
