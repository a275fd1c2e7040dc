// internal/config/normalize.go
package config

import "strings"

const (
	StreamTagsDefault = "default"
	StreamTagsLegacy  = "legacy"

	DriverBugst    = "bugst"
	DriverGoburrow = "goburrow"

	DefaultProgram         = "openocd"
	DefaultTargetName      = "STeaMi"
	DefaultMaintenanceName = "MAINTENANCE"
	DefaultStack           = "BLE_HCI_EXT"
	DefaultOperatorImage   = "operator_fw.hex"

	TimeoutMinS     = 1
	TimeoutMaxS     = 30
	DefaultTimeoutS = 10

	DefaultPollIntervalMs   = 500
	DefaultSettleMs         = 2000
	DefaultRebootWaitMs     = 5000
	DefaultCommandWaitMs    = 1000
	DefaultReadTimeoutMs    = 2000
	DefaultRetryPaceMs      = 1000
	DefaultProgressTimeoutS = 600
	DefaultMaxFusFlashes    = 3
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- openocd ----
	o := &cfg.OpenOCD
	if o.Program == "" {
		o.Program = DefaultProgram
	}
	o.StreamTags = strings.ToLower(o.StreamTags)
	if o.StreamTags == "" {
		o.StreamTags = StreamTagsDefault
	}
	if len(o.SearchPaths) == 0 {
		o.SearchPaths = []string{"scripts"}
	}

	// ---- bootloader ----
	b := &cfg.Bootloader
	if b.TargetName == "" {
		b.TargetName = DefaultTargetName
	}
	if b.MaintenanceName == "" {
		b.MaintenanceName = DefaultMaintenanceName
	}
	if b.TimeoutS == 0 {
		b.TimeoutS = DefaultTimeoutS
	}
	b.TimeoutS = ClampTimeout(b.TimeoutS)
	if b.PollIntervalMs == 0 {
		b.PollIntervalMs = DefaultPollIntervalMs
	}

	// ---- wireless stack ----
	ws := &cfg.WirelessStack
	ws.Driver = strings.ToLower(ws.Driver)
	if ws.Driver == "" {
		ws.Driver = DriverBugst
	}
	if ws.Stack == "" {
		ws.Stack = DefaultStack
	}
	if ws.OperatorImage == "" {
		ws.OperatorImage = DefaultOperatorImage
	}
	defaultInt(&ws.SettleMs, DefaultSettleMs)
	defaultInt(&ws.RebootWaitMs, DefaultRebootWaitMs)
	defaultInt(&ws.CommandWaitMs, DefaultCommandWaitMs)
	defaultInt(&ws.ReadTimeoutMs, DefaultReadTimeoutMs)
	defaultInt(&ws.RetryPaceMs, DefaultRetryPaceMs)
	defaultInt(&ws.ProgressTimeoutS, DefaultProgressTimeoutS)
	defaultInt(&ws.MaxFusFlashes, DefaultMaxFusFlashes)

	// ---- log ----
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ClampTimeout bounds a volume wait timeout (seconds) to [TimeoutMinS, TimeoutMaxS].
func ClampTimeout(s int) int {
	if s < TimeoutMinS {
		return TimeoutMinS
	}
	if s > TimeoutMaxS {
		return TimeoutMaxS
	}
	return s
}

func defaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
