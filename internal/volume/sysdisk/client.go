// internal/volume/sysdisk/client.go
package sysdisk

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Mount is one mounted partition as reported by the OS.
type Mount struct {
	Name   string
	Path   string
	Device string
}

// Client lists physical partitions through gopsutil.
// It holds no state; each call re-reads the partition table.
type Client struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	label      func(name string) (string, error)
}

func New() *Client {
	return &Client{
		partitions: disk.PartitionsWithContext,
		label:      disk.Label,
	}
}

// Mounts returns every mounted physical partition.
func (c *Client) Mounts(ctx context.Context) ([]Mount, error) {
	parts, err := c.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("sysdisk: partitions: %w", err)
	}

	out := make([]Mount, 0, len(parts))
	for _, p := range parts {
		if p.Mountpoint == "" {
			continue
		}
		out = append(out, Mount{
			Name:   c.nameOf(p),
			Path:   p.Mountpoint,
			Device: p.Device,
		})
	}
	return out, nil
}

// nameOf is the mount-point base name. Drive-letter mounts ("E:\") have no
// usable base name; the partition label is used for them when known.
func (c *Client) nameOf(p disk.PartitionStat) string {
	base := filepath.Base(filepath.Clean(p.Mountpoint))
	if base != "" && base != "." && base != string(filepath.Separator) && !strings.HasSuffix(base, ":") {
		return base
	}
	if c.label != nil {
		if l, err := c.label(filepath.Base(p.Device)); err == nil && l != "" {
			return l
		}
	}
	return p.Mountpoint
}
