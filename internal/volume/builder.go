// internal/volume/builder.go
package volume

import (
	"context"
	"time"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/volume/sysdisk"
)

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]Volume, error)

func (f ListerFunc) List(ctx context.Context) ([]Volume, error) { return f(ctx) }

// SystemLister lists mounted volumes through sysdisk.
func SystemLister() Lister {
	c := sysdisk.New()
	return ListerFunc(func(ctx context.Context) ([]Volume, error) {
		parts, err := c.Mounts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Volume, 0, len(parts))
		for _, m := range parts {
			out = append(out, Volume{Name: m.Name, Path: m.Path, Device: m.Device})
		}
		return out, nil
	})
}

// Build constructs a Poller on the system volume list from the bootloader
// section. The timeout is clamped to the accepted range.
func Build(b config.BootloaderConfig) (*Poller, error) {
	interval := time.Duration(b.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = config.DefaultPollIntervalMs * time.Millisecond
	}
	return New(
		Config{
			Interval: interval,
			Timeout:  time.Duration(config.ClampTimeout(b.TimeoutS)) * time.Second,
		},
		SystemLister(),
	)
}
