// internal/volume/runner.go
package volume

import (
	"context"
	"time"
)

// Run emits a Snapshot immediately and then on every tick until ctx ends.
// No overlap. No retries.
func (p *Poller) Run(ctx context.Context, out chan<- Snapshot) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case out <- p.PollOnce(ctx):
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
