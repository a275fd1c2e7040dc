// internal/serialcmd/ports.go
package serialcmd

import (
	"fmt"
	"sort"
	"sync"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one serial device. Product is empty when the
// system reports no label.
type PortInfo struct {
	Name    string
	Product string
}

func (p PortInfo) String() string {
	if p.Product == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Product)
}

// Sort orders ports: labelled ports first by label then name,
// unlabelled ports after them by name.
func Sort(ports []PortInfo) {
	sort.SliceStable(ports, func(i, j int) bool {
		a, b := ports[i], ports[j]
		if (a.Product == "") != (b.Product == "") {
			return a.Product != ""
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Name < b.Name
	})
}

// Lister enumerates serial devices.
type Lister interface {
	List() ([]PortInfo, error)
}

// SystemLister enumerates through go.bug.st/serial/enumerator.
type SystemLister struct{}

func (SystemLister) List() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: list ports: %w", err)
	}

	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		out = append(out, PortInfo{Name: d.Name, Product: d.Product})
	}
	Sort(out)
	return out, nil
}

// ---- selection ----

// Selection keeps the known ports and at most one selected port.
type Selection struct {
	mu       sync.Mutex
	lister   Lister
	ports    []PortInfo
	selected string
}

func NewSelection(l Lister) *Selection {
	return &Selection{lister: l}
}

// Refresh re-enumerates ports and clears the selection.
func (s *Selection) Refresh() ([]PortInfo, error) {
	ports, err := s.lister.List()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = ""
	if err != nil {
		s.ports = nil
		return nil, err
	}
	Sort(ports)
	s.ports = ports
	return append([]PortInfo(nil), ports...), nil
}

// Select picks a port by name. The name must be in the last refresh.
func (s *Selection) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.ports {
		if p.Name == name {
			s.selected = name
			return nil
		}
	}
	return fmt.Errorf("serial: port %q not found", name)
}

// Selected returns the selected port name and whether one is set.
func (s *Selection) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}
