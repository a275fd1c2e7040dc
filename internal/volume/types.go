// internal/volume/types.go
package volume

import "time"

// Volume is one mounted filesystem.
// Name is what the user matches against: the mount-point base name
// (or the partition label where the mount point has none).
type Volume struct {
	Name   string
	Path   string
	Device string
}

// Snapshot is the result of one listing cycle.
type Snapshot struct {
	At      time.Time
	Volumes []Volume
	Err     error // non-nil means the listing failed
}

// Find returns the first volume named name.
func (s Snapshot) Find(name string) (Volume, bool) {
	for _, v := range s.Volumes {
		if v.Name == name {
			return v, true
		}
	}
	return Volume{}, false
}
