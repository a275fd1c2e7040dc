// internal/wsupgrade/sequencer.go
package wsupgrade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/steamicc/easyflash/internal/flasherr"
	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
)

// ErrBusy is returned by Start while a job is in flight.
var ErrBusy = errors.New("wsupgrade: a job is already running")

// Scratch files in the tmp directory. Distinct from the bootloader copy so
// both sequences can share the directory.
const (
	mergedFusFile   = "ws_fus_merged.hex"
	mergedStackFile = "ws_stack_merged.hex"
)

// Flasher programs the radio co-processor; *openocd.Tool implements it.
type Flasher interface {
	FlashRadio(ctx context.Context, file string, live chan<- logsink.Entry) (process.Result, error)
}

// Config locates images and bounds the job.
type Config struct {
	WirelessStackDir string
	TmpDir           string
	OperatorImage    string // file name inside WirelessStackDir
	Timings          Timings
}

// Sequencer runs one wireless-stack upgrade at a time.
type Sequencer struct {
	cfg     Config
	t       Timings
	flasher Flasher
	dial    Dialer
	sink    *logsink.Sink
	log     *slog.Logger

	busy atomic.Bool
}

func New(cfg Config, flasher Flasher, dial Dialer, sink *logsink.Sink, log *slog.Logger) (*Sequencer, error) {
	if flasher == nil {
		return nil, errors.New("wsupgrade: flasher required")
	}
	if dial == nil {
		return nil, errors.New("wsupgrade: dialer required")
	}
	if sink == nil {
		return nil, errors.New("wsupgrade: sink required")
	}
	if cfg.WirelessStackDir == "" || cfg.TmpDir == "" {
		return nil, errors.New("wsupgrade: wireless stack and tmp directories required")
	}
	if cfg.OperatorImage == "" {
		return nil, errors.New("wsupgrade: operator image required")
	}
	if cfg.Timings.ReadTimeout <= 0 || cfg.Timings.ProgressTimeout <= 0 {
		return nil, errors.New("wsupgrade: read and progress timeouts must be > 0")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{cfg: cfg, t: cfg.Timings, flasher: flasher, dial: dial, sink: sink, log: log}, nil
}

// Busy reports whether a job is in flight.
func (s *Sequencer) Busy() bool { return s.busy.Load() }

// Start checks the port and launches the job.
// The returned channel receives every step entered and is closed once the
// job is back to Ready; the guard is released before the close.
func (s *Sequencer) Start(ctx context.Context, job Job) (<-chan Step, error) {
	steps, _, err := s.start(ctx, job)
	return steps, err
}

// Run starts a job and blocks until it is back to Ready.
func (s *Sequencer) Run(ctx context.Context, job Job) error {
	steps, outcome, err := s.start(ctx, job)
	if err != nil {
		return err
	}
	for range steps {
	}
	return <-outcome
}

// start is Start plus the job outcome, delivered once before the guard is
// released: nil when the job completed, an error when it aborted.
func (s *Sequencer) start(ctx context.Context, job Job) (<-chan Step, <-chan error, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, nil, ErrBusy
	}

	if err := s.precheck(job); err != nil {
		s.sink.Push(logsink.NewError(err.Error()))
		s.busy.Store(false)
		return nil, nil, err
	}

	steps := make(chan Step, 32)
	outcome := make(chan error, 1)
	go s.drive(ctx, job, steps, outcome)
	return steps, outcome, nil
}

func (s *Sequencer) precheck(job Job) error {
	if job.Port == "" {
		return flasherr.Errorf(flasherr.KindPrecondition, "serial port", "no port selected")
	}
	if err := probe(s.dial, job.Port); err != nil {
		return flasherr.New(flasherr.KindSerial, "serial port", err)
	}
	return nil
}

// ---- driver ----

func (s *Sequencer) drive(ctx context.Context, job Job, steps chan<- Step, outcome chan<- error) {
	defer close(steps)
	defer s.busy.Store(false)

	log := s.log.With("job", uuid.NewString(), "sequence", "wireless-stack", "stack", job.Stack.ID())

	st := State{Step: Step{Kind: Ready}, Job: job, MaxFusFlashes: s.t.MaxFusFlashes}
	st, entries := Transition(st, Event{})
	for {
		s.sink.Append(entries...)
		s.emit(steps, st.Step)
		log.Debug("step", "step", st.Step)

		if st.Step.Kind == Ready {
			if st.Failed {
				log.Warn("job aborted", "fus_flashes", st.FusFlashes)
				outcome <- errors.New("wsupgrade: job aborted")
			} else {
				log.Info("job done", "fus_flashes", st.FusFlashes)
				outcome <- nil
			}
			return
		}

		done := make(chan Event, 1)
		go func(st State) { done <- s.work(ctx, st) }(st)

		st, entries = Transition(st, <-done)
	}
}

// emit never blocks the driver: a consumer that stopped reading only misses steps.
func (s *Sequencer) emit(steps chan<- Step, st Step) {
	select {
	case steps <- st:
	default:
	}
}

// work performs the blocking part of st.Step.
func (s *Sequencer) work(ctx context.Context, st State) Event {
	port := st.Job.Port

	switch st.Step.Kind {
	case StartProcess:
		for _, name := range []string{s.cfg.OperatorImage, st.Job.Stack.Filename()} {
			if _, err := os.Stat(s.wsPath(name)); err != nil {
				return Event{Err: flasherr.New(flasherr.KindFile, "image", err)}
			}
		}
		return Event{Err: probe(s.dial, port)}

	case FlashOperator:
		res, err := s.flash(ctx, s.wsPath(s.cfg.OperatorImage))
		return Event{Result: res, Err: err}

	case UpgradeFus:
		v, err := s.readVersion(ctx, port)
		return Event{Version: v, Err: err}

	case FlashFus:
		return s.mergeFlashUpgrade(ctx, port, st.Step.Fus.Filename(), mergedFusFile)

	case DeleteFirmware:
		return Event{Err: s.deleteFirmware(ctx, port)}

	case UnlockFus:
		return Event{Err: s.confirmStatus(ctx, port)}

	case FlashFirmware:
		return s.mergeFlashUpgrade(ctx, port, st.Job.Stack.Filename(), mergedStackFile)

	default:
		return Event{Err: fmt.Errorf("wsupgrade: no work for step %s", st.Step)}
	}
}

// mergeFlashUpgrade merges the operator image with name, flashes the result
// and follows the UPGRADE it triggers.
func (s *Sequencer) mergeFlashUpgrade(ctx context.Context, port, name, scratch string) Event {
	merged := filepath.Join(s.cfg.TmpDir, scratch)
	if err := image.Merge(s.wsPath(s.cfg.OperatorImage), s.wsPath(name), merged); err != nil {
		return Event{Err: flasherr.New(flasherr.KindFile, "merge", err)}
	}

	res, err := s.flash(ctx, merged)
	if err != nil || !res.Success() {
		return Event{Result: res, Err: err}
	}

	out, err := s.followUpgrade(ctx, port)
	return Event{Result: res, Upgrade: out, Err: err}
}

// flash runs openocd and streams its output into the sink while it runs.
func (s *Sequencer) flash(ctx context.Context, file string) (process.Result, error) {
	live := make(chan logsink.Entry, 64)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for e := range live {
			s.sink.Push(e)
		}
	}()

	res, err := s.flasher.FlashRadio(ctx, file, live)
	close(live)
	<-forwarded
	return res, err
}

func (s *Sequencer) wsPath(name string) string {
	return filepath.Join(s.cfg.WirelessStackDir, name)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
