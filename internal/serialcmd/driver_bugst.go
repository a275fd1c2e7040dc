// internal/serialcmd/driver_bugst.go
package serialcmd

import (
	"go.bug.st/serial"
)

func openBugst(name string) (Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &OpenError{Port: name, Reason: openReason(err), Err: err}
	}

	if err := p.SetReadTimeout(PollTimeout); err != nil {
		_ = p.Close()
		return nil, &OpenError{Port: name, Reason: openReason(err), Err: err}
	}
	return p, nil
}
