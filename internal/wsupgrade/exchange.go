// internal/wsupgrade/exchange.go
package wsupgrade

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/steamicc/easyflash/internal/flasherr"
	"github.com/steamicc/easyflash/internal/fus"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/serialcmd"
)

// readVersion waits for the device to settle and asks VERSION.
func (s *Sequencer) readVersion(ctx context.Context, port string) (fus.VersionResponse, error) {
	if err := sleepCtx(ctx, s.t.Settle); err != nil {
		return fus.VersionResponse{}, err
	}

	dev, err := s.dial.Dial(port)
	if err != nil {
		return fus.VersionResponse{}, flasherr.New(flasherr.KindSerial, "open", err)
	}
	defer dev.Close()

	line, err := dev.SendAndRead(ctx, fus.CmdVersion, s.t.CommandWait, s.t.ReadTimeout)
	if err != nil {
		return fus.VersionResponse{}, flasherr.New(flasherr.KindSerial, fus.CmdVersion, err)
	}
	v, err := fus.DecodeVersion(line)
	return v, flasherr.New(flasherr.KindProtocol, fus.CmdVersion, err)
}

// deleteFirmware sends DELETE until one attempt gets any answer.
func (s *Sequencer) deleteFirmware(ctx context.Context, port string) error {
	attempt := 0
	op := func() error {
		attempt++
		_, err := s.once(port, func(dev Device) (string, error) {
			b, err := dev.SendAndReadAny(ctx, fus.CmdDelete, s.t.CommandWait, s.t.ReadTimeout)
			return string(b), err
		})
		if err != nil {
			s.sink.Push(logsink.Warningf("%s attempt %d/%d failed (%v)", fus.CmdDelete, attempt, DeleteAttempts, err))
		}
		return err
	}

	if err := backoff.Retry(op, s.policy(ctx, DeleteAttempts)); err != nil {
		return flasherr.New(flasherr.KindSerial, fmt.Sprintf("%s after %d attempts", fus.CmdDelete, attempt), err)
	}
	return nil
}

// confirmStatus runs StatusRounds rounds of up to StatusAttempts STATUS
// requests. Every round needs one decoded answer.
func (s *Sequencer) confirmStatus(ctx context.Context, port string) error {
	for round := 1; round <= StatusRounds; round++ {
		if round > 1 {
			if err := sleepCtx(ctx, s.t.RetryPace); err != nil {
				return err
			}
		}

		var last fus.StatusResponse
		op := func() error {
			line, err := s.once(port, func(dev Device) (string, error) {
				return dev.SendAndRead(ctx, fus.CmdStatus, s.t.CommandWait, s.t.ReadTimeout)
			})
			if err != nil {
				return err
			}
			st, err := fus.DecodeStatus(line)
			if err != nil {
				return err
			}
			last = st
			return nil
		}

		if err := backoff.Retry(op, s.policy(ctx, StatusAttempts)); err != nil {
			return flasherr.New(flasherr.KindSerial, fmt.Sprintf("%s round %d/%d", fus.CmdStatus, round, StatusRounds), err)
		}
		s.sink.Push(logsink.Infof("%s %d/%d: %s", fus.CmdStatus, round, StatusRounds, fus.StatusString(last.Status)))
	}
	return nil
}

// followUpgrade sends UPGRADE and reads progress lines until status 0.
// Read timeouts are tolerated while the overall deadline holds; a lost port
// (the co-processor reboots while installing) is reopened. A failed UPGRADE
// send is returned as is.
func (s *Sequencer) followUpgrade(ctx context.Context, port string) (UpgradeOutcome, error) {
	var out UpgradeOutcome

	if err := sleepCtx(ctx, s.t.RebootWait); err != nil {
		return out, err
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, s.t.ProgressTimeout)
	defer cancel()

	// the port may take a while to come back after the reboot
	dev, err := s.redial(ctx, port)
	if err != nil {
		return out, s.progressStopped(parent, err)
	}
	defer func() { _ = dev.Close() }()

	line, err := dev.SendAndRead(ctx, fus.CmdUpgrade, s.t.CommandWait, s.t.ReadTimeout)
	if err != nil && !errors.Is(err, serialcmd.ErrTimeout) {
		if ctx.Err() != nil {
			return out, s.progressStopped(parent, err)
		}
		return out, flasherr.New(flasherr.KindSerial, fus.CmdUpgrade, err)
	}

	for {
		switch {
		case err == nil:
			p, derr := fus.DecodeProgress(line)
			if derr != nil {
				s.sink.Push(logsink.Warningf("Unexpected answer: %s", line))
				break
			}
			s.sink.Push(logsink.Infof("%s (0x%02X)", fus.StatusString(p.Status), p.Status))
			if p.Error != nil && *p.Error != 0 {
				out.Errors = append(out.Errors, *p.Error)
				s.sink.Push(logsink.NewWarning(fus.ErrorString(*p.Error)))
			}
			if p.Done() {
				return out, nil
			}

		case ctx.Err() != nil:
			return out, s.progressStopped(parent, nil)

		case errors.Is(err, serialcmd.ErrTimeout):
			// still installing

		default:
			s.log.Debug("upgrade port lost, reopening", "port", port, "err", err)
			_ = dev.Close()
			next, derr := s.redial(ctx, port)
			if derr != nil {
				return out, s.progressStopped(parent, derr)
			}
			dev = next
		}

		line, err = dev.ReadLine(ctx, s.t.ReadTimeout)
	}
}

// redial opens port, retrying every RetryPace until ctx ends.
// On failure the last open error is returned.
func (s *Sequencer) redial(ctx context.Context, port string) (Device, error) {
	var last error
	dev, err := backoff.RetryWithData[Device](func() (Device, error) {
		d, err := s.dial.Dial(port)
		if err != nil {
			last = err
		}
		return d, err
	}, backoff.WithContext(backoff.NewConstantBackOff(s.t.RetryPace), ctx))
	if err != nil && last != nil {
		return nil, last
	}
	return dev, err
}

// progressStopped reports why the follow-up ended early: the caller's ctx,
// or the progress deadline (with the last error seen, if any).
func (s *Sequencer) progressStopped(parent context.Context, last error) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if last != nil {
		return flasherr.Errorf(flasherr.KindSerial, fus.CmdUpgrade, "no final status within %s (last error: %v)", s.t.ProgressTimeout, last)
	}
	return flasherr.Errorf(flasherr.KindSerial, fus.CmdUpgrade, "no final status within %s", s.t.ProgressTimeout)
}

// once opens port, runs fn and closes the port again.
func (s *Sequencer) once(port string, fn func(Device) (string, error)) (string, error) {
	dev, err := s.dial.Dial(port)
	if err != nil {
		return "", err
	}
	defer dev.Close()
	return fn(dev)
}

func (s *Sequencer) policy(ctx context.Context, attempts int) backoff.BackOffContext {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.t.RetryPace), uint64(attempts-1)),
		ctx,
	)
}
