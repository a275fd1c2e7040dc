// internal/config/config.go
package config

type Config struct {
	OpenOCD       OpenOCDConfig       `yaml:"openocd"`
	Paths         PathsConfig         `yaml:"paths"`
	Bootloader    BootloaderConfig    `yaml:"bootloader"`
	WirelessStack WirelessStackConfig `yaml:"wireless_stack"`
	Log           LogConfig           `yaml:"log"`
}

// ---- OPENOCD ----

type OpenOCDConfig struct {
	Program string `yaml:"program"`

	// StreamTags selects stdout/stderr severity mapping: "default" or "legacy".
	StreamTags string `yaml:"stream_tags"`

	// SearchPaths are passed as -s before the managed directories.
	SearchPaths []string `yaml:"search_paths"`
}

// ---- PATHS ----

type PathsConfig struct {
	// BaseDir holds scripts/, configs/, tmp/, wireless_stack/ and settings/.
	// Empty => XDG data dir.
	BaseDir string `yaml:"base_dir"`
}

// ---- BOOTLOADER SEQUENCE ----

type BootloaderConfig struct {
	BootloaderPath string `yaml:"bootloader_path"`
	FirmwarePath   string `yaml:"firmware_path"`
	UserFilePath   string `yaml:"user_file_path"` // optional

	TargetName      string `yaml:"target_name"`
	MaintenanceName string `yaml:"maintenance_name"`

	TimeoutS       int `yaml:"timeout_s"` // clamped to [1,30]
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// ---- WIRELESS STACK SEQUENCE ----

type WirelessStackConfig struct {
	Port   string `yaml:"port"`
	Driver string `yaml:"driver"` // "bugst" | "goburrow"
	Stack  string `yaml:"stack"`

	OperatorImage string `yaml:"operator_image"`

	SettleMs         int `yaml:"settle_ms"`
	RebootWaitMs     int `yaml:"reboot_wait_ms"`
	CommandWaitMs    int `yaml:"command_wait_ms"`
	ReadTimeoutMs    int `yaml:"read_timeout_ms"`
	RetryPaceMs      int `yaml:"retry_pace_ms"`
	ProgressTimeoutS int `yaml:"progress_timeout_s"`
	MaxFusFlashes    int `yaml:"max_fus_flashes"`
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"`
	Timestamps bool   `yaml:"timestamps"`
}
