// internal/config/paths.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "easyflash"

// Paths is the resolved directory layout for one run.
// It is built once at start-up and passed to whoever needs it.
type Paths struct {
	Base          string
	Scripts       string
	Configs       string
	Tmp           string
	WirelessStack string
	Settings      string
}

// ResolvePaths derives the directory layout from base.
// An empty base resolves to the XDG data directory.
func ResolvePaths(base string) (Paths, error) {
	if base == "" {
		if xdg.DataHome == "" {
			return Paths{}, fmt.Errorf("paths: no data directory could be resolved from the operating system")
		}
		base = filepath.Join(xdg.DataHome, appDirName)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return Paths{}, fmt.Errorf("paths: %w", err)
	}

	return Paths{
		Base:          abs,
		Scripts:       filepath.Join(abs, "scripts"),
		Configs:       filepath.Join(abs, "configs"),
		Tmp:           filepath.Join(abs, "tmp"),
		WirelessStack: filepath.Join(abs, "wireless_stack"),
		Settings:      filepath.Join(abs, "settings"),
	}, nil
}

// Ensure creates every directory of the layout.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Scripts, p.Configs, p.Tmp, p.WirelessStack, p.Settings} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("paths: create %s: %w", dir, err)
		}
	}
	return nil
}
