// internal/bootflash/sequencer.go
package bootflash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/steamicc/easyflash/internal/flasherr"
	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
	"github.com/steamicc/easyflash/internal/volume"
)

// ErrBusy is returned by Start while a job is in flight.
var ErrBusy = errors.New("bootflash: a job is already running")

// Flasher is the openocd surface the sequence needs; *openocd.Tool implements it.
type Flasher interface {
	Installed(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) (process.Result, error)
	Erase(ctx context.Context) (process.Result, error)
	FlashBootloader(ctx context.Context, path string) (process.Result, error)
}

// VolumeWaiter blocks until a named volume is mounted; *volume.Poller implements it.
type VolumeWaiter interface {
	Wait(ctx context.Context, name string) (volume.Volume, error)
}

// Sequencer runs one bootloader job at a time.
type Sequencer struct {
	tool   Flasher
	volume VolumeWaiter
	sink   *logsink.Sink
	log    *slog.Logger

	busy atomic.Bool
}

// New creates a Sequencer writing user-visible output to sink.
func New(tool Flasher, waiter VolumeWaiter, sink *logsink.Sink, log *slog.Logger) (*Sequencer, error) {
	if tool == nil {
		return nil, errors.New("bootflash: flasher required")
	}
	if waiter == nil {
		return nil, errors.New("bootflash: volume waiter required")
	}
	if sink == nil {
		return nil, errors.New("bootflash: sink required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{tool: tool, volume: waiter, sink: sink, log: log}, nil
}

// Busy reports whether a job is in flight.
func (s *Sequencer) Busy() bool { return s.busy.Load() }

// Start validates the job and launches it.
// The returned channel receives every step entered and is closed after
// Done or Aborted; the job guard is released before the close.
// ctx only stops waiting; a running openocd is never killed.
func (s *Sequencer) Start(ctx context.Context, job Job) (<-chan Step, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	if err := s.precheck(ctx, job); err != nil {
		s.sink.Push(logsink.NewError(errors.Unwrap(err).Error()))
		s.busy.Store(false)
		return nil, err
	}

	steps := make(chan Step, int(Aborted)+2)
	go s.drive(ctx, job, steps)
	return steps, nil
}

// Run starts a job and blocks until it ends. It returns the final step and,
// when the job aborted, an error.
func (s *Sequencer) Run(ctx context.Context, job Job) (Step, error) {
	steps, err := s.Start(ctx, job)
	if err != nil {
		return Idle, err
	}

	last := Idle
	for st := range steps {
		last = st
	}
	if last != Done {
		return last, fmt.Errorf("bootflash: job aborted")
	}
	return last, nil
}

// ---- precondition ----

func (s *Sequencer) precheck(ctx context.Context, job Job) error {
	if !isFile(job.BootloaderPath) {
		return flasherr.Errorf(flasherr.KindPrecondition, "", "Invalid bootloader file (no such file or directory)")
	}
	if !isFile(job.FirmwarePath) {
		return flasherr.Errorf(flasherr.KindPrecondition, "", "Invalid firmware file (no such file or directory)")
	}
	if job.UserFilePath != "" && !isFile(job.UserFilePath) {
		s.sink.Push(logsink.NewWarning("Invalid user file (no such file or directory)."))
	}

	ok, err := s.tool.Installed(ctx)
	if err != nil {
		return flasherr.Errorf(flasherr.KindPrecondition, "", "Failed to test openocd installation: %v", err)
	}
	if !ok {
		return flasherr.Errorf(flasherr.KindPrecondition, "", "OpenOCD is not found")
	}
	return nil
}

// ---- driver ----

func (s *Sequencer) drive(ctx context.Context, job Job, steps chan<- Step) {
	defer close(steps)
	defer s.busy.Store(false)

	log := s.log.With("job", uuid.NewString(), "sequence", "bootloader")

	st, entries := Transition(State{Step: Idle, Job: job}, Event{})
	for {
		s.sink.Append(entries...)
		steps <- st.Step
		log.Debug("step", "step", st.Step)

		if st.Step.Terminal() {
			if st.Step == Aborted {
				log.Warn("job aborted")
			} else {
				log.Info("job done")
			}
			return
		}

		done := make(chan Event, 1)
		go func(st State) { done <- s.work(ctx, st) }(st)

		st, entries = Transition(st, <-done)
	}
}

// work performs the blocking part of st.Step.
func (s *Sequencer) work(ctx context.Context, st State) Event {
	switch st.Step {
	case Unlocking:
		res, err := s.tool.Unlock(ctx)
		return Event{Result: res, Err: err}

	case Erasing:
		res, err := s.tool.Erase(ctx)
		return Event{Result: res, Err: err}

	case FlashingBootloader:
		res, err := s.tool.FlashBootloader(ctx, st.Job.BootloaderPath)
		return Event{Result: res, Err: err}

	case WaitingMaintenanceVolume:
		return s.waitVolume(ctx, st.Job.MaintenanceName)

	case WaitingDeviceVolume:
		return s.waitVolume(ctx, st.Job.TargetName)

	case CopyingFirmware:
		if _, err := image.CopyToDir(st.Job.FirmwarePath, st.Volume.Path); err != nil {
			return Event{Err: err}
		}
		return Event{HasUserFile: isFile(st.Job.UserFilePath)}

	case CopyingUserFile:
		_, err := image.CopyToDir(st.Job.UserFilePath, st.Volume.Path)
		return Event{Err: err}

	default:
		return Event{Err: fmt.Errorf("bootflash: no work for step %s", st.Step)}
	}
}

func (s *Sequencer) waitVolume(ctx context.Context, name string) Event {
	v, err := s.volume.Wait(ctx, name)
	if err != nil {
		return Event{Err: err}
	}
	sha, shaErr := image.ReadGitSHA(v.Path)
	return Event{Volume: v, SHA: sha, SHAErr: shaErr}
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
