// internal/volume/poller.go
package volume

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Lister enumerates mounted volumes.
type Lister interface {
	List(ctx context.Context) ([]Volume, error)
}

// Config is the runtime config the poller needs.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ErrNotFound is returned by Wait when the volume never appeared.
var ErrNotFound = errors.New("volume: not found")

// Poller is a clock-driven volume watcher.
type Poller struct {
	cfg    Config
	lister Lister
}

// New creates a poller with immutable config.
func New(cfg Config, lister Lister) (*Poller, error) {
	if lister == nil {
		return nil, errors.New("volume: lister required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("volume: interval must be > 0")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("volume: timeout must be > 0")
	}
	return &Poller{cfg: cfg, lister: lister}, nil
}

// PollOnce performs exactly one listing.
func (p *Poller) PollOnce(ctx context.Context) Snapshot {
	vols, err := p.lister.List(ctx)
	return Snapshot{At: time.Now(), Volumes: vols, Err: err}
}

// Wait polls until a volume called name is mounted.
// It checks immediately, then every Interval, and gives up after Timeout
// with ErrNotFound. Listing errors are treated as "not there yet".
func (p *Poller) Wait(ctx context.Context, name string) (Volume, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	var lastErr error
	for {
		snap := p.PollOnce(ctx)
		if snap.Err == nil {
			if v, ok := snap.Find(name); ok {
				return v, nil
			}
		} else {
			lastErr = snap.Err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if lastErr != nil {
					return Volume{}, fmt.Errorf("%w: %q (last listing error: %v)", ErrNotFound, name, lastErr)
				}
				return Volume{}, fmt.Errorf("%w: %q", ErrNotFound, name)
			}
			return Volume{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
