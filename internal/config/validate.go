// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/steamicc/easyflash/internal/image"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// OPENOCD
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.OpenOCD.StreamTags) {
	case "", StreamTagsDefault, StreamTagsLegacy:
	default:
		return fmt.Errorf("openocd.stream_tags %q: must be %q or %q",
			cfg.OpenOCD.StreamTags, StreamTagsDefault, StreamTagsLegacy)
	}

	for _, p := range cfg.OpenOCD.SearchPaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("openocd.search_paths: empty entry")
		}
	}

	// ------------------------------------------------------------
	// BOOTLOADER
	// ------------------------------------------------------------

	b := cfg.Bootloader
	if b.TimeoutS < 0 {
		return fmt.Errorf("bootloader.timeout_s must be >= 0 (got %d)", b.TimeoutS)
	}
	if b.PollIntervalMs < 0 {
		return fmt.Errorf("bootloader.poll_interval_ms must be >= 0 (got %d)", b.PollIntervalMs)
	}
	for _, n := range []struct{ key, val string }{
		{"bootloader.target_name", b.TargetName},
		{"bootloader.maintenance_name", b.MaintenanceName},
	} {
		if strings.ContainsAny(n.val, `/\`) {
			return fmt.Errorf("%s %q: volume names must not contain path separators", n.key, n.val)
		}
	}

	// ------------------------------------------------------------
	// WIRELESS STACK
	// ------------------------------------------------------------

	ws := cfg.WirelessStack
	switch strings.ToLower(ws.Driver) {
	case "", DriverBugst, DriverGoburrow:
	default:
		return fmt.Errorf("wireless_stack.driver %q: must be %q or %q", ws.Driver, DriverBugst, DriverGoburrow)
	}

	if ws.Stack != "" {
		if _, err := image.ParseStack(ws.Stack); err != nil {
			return fmt.Errorf("wireless_stack.stack: %w", err)
		}
	}

	for _, d := range []struct {
		key string
		val int
	}{
		{"wireless_stack.settle_ms", ws.SettleMs},
		{"wireless_stack.reboot_wait_ms", ws.RebootWaitMs},
		{"wireless_stack.command_wait_ms", ws.CommandWaitMs},
		{"wireless_stack.read_timeout_ms", ws.ReadTimeoutMs},
		{"wireless_stack.retry_pace_ms", ws.RetryPaceMs},
		{"wireless_stack.progress_timeout_s", ws.ProgressTimeoutS},
		{"wireless_stack.max_fus_flashes", ws.MaxFusFlashes},
	} {
		if d.val < 0 {
			return fmt.Errorf("%s must be >= 0 (got %d)", d.key, d.val)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}

	return nil
}
