// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// helper to build a valid config quickly
func baseConfig() *Config {
	return &Config{
		Bootloader: BootloaderConfig{
			BootloaderPath: "bl.bin",
			FirmwarePath:   "fw.bin",
			TimeoutS:       10,
		},
		WirelessStack: WirelessStackConfig{
			Port:  "/dev/ttyACM0",
			Stack: "BLE_HCI_EXT",
		},
	}
}

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("empty config should validate: %v", err)
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(baseConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownStreamTags(t *testing.T) {
	cfg := baseConfig()
	cfg.OpenOCD.StreamTags = "inverted"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected stream_tags error, got nil")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := baseConfig()
	cfg.WirelessStack.Driver = "usb"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected driver error, got nil")
	}
}

func TestValidate_UnknownStack(t *testing.T) {
	cfg := baseConfig()
	cfg.WirelessStack.Stack = "LoRa"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected stack error, got nil")
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := baseConfig()
	cfg.Bootloader.TimeoutS = -1

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
}

func TestValidate_VolumeNameWithSeparator(t *testing.T) {
	cfg := baseConfig()
	cfg.Bootloader.TargetName = "media/STeaMi"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected target_name error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := baseConfig()
	cfg.WirelessStack.Driver = "GOBURROW"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WirelessStack.Driver != "GOBURROW" {
		t.Fatalf("Validate mutated driver: %q", cfg.WirelessStack.Driver)
	}
}

func TestNormalize_ClampsTimeout(t *testing.T) {
	for _, tc := range []struct {
		in, want int
	}{
		{0, DefaultTimeoutS},
		{1, 1},
		{45, TimeoutMaxS},
		{30, 30},
	} {
		cfg := baseConfig()
		cfg.Bootloader.TimeoutS = tc.in
		Normalize(cfg)
		if cfg.Bootloader.TimeoutS != tc.want {
			t.Fatalf("timeout %d: got=%d want=%d", tc.in, cfg.Bootloader.TimeoutS, tc.want)
		}
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	Normalize(cfg)

	if cfg.OpenOCD.Program != DefaultProgram {
		t.Fatalf("program: got=%q", cfg.OpenOCD.Program)
	}
	if cfg.Bootloader.MaintenanceName != DefaultMaintenanceName {
		t.Fatalf("maintenance name: got=%q", cfg.Bootloader.MaintenanceName)
	}
	if cfg.WirelessStack.Driver != DriverBugst {
		t.Fatalf("driver: got=%q", cfg.WirelessStack.Driver)
	}
	if cfg.WirelessStack.MaxFusFlashes != DefaultMaxFusFlashes {
		t.Fatalf("max fus flashes: got=%d", cfg.WirelessStack.MaxFusFlashes)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "easyflash.yaml")
	body := `
openocd:
  program: /opt/openocd/bin/openocd
  stream_tags: legacy
bootloader:
  bootloader_path: bl.bin
  firmware_path: fw.bin
  target_name: DIS_L4IOT
  timeout_s: 5
wireless_stack:
  port: COM4
  driver: goburrow
  stack: THREAD_FTD
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	Normalize(cfg)

	if cfg.OpenOCD.StreamTags != StreamTagsLegacy {
		t.Fatalf("stream tags: got=%q", cfg.OpenOCD.StreamTags)
	}
	if cfg.Bootloader.TargetName != "DIS_L4IOT" || cfg.Bootloader.TimeoutS != 5 {
		t.Fatalf("bootloader section: %+v", cfg.Bootloader)
	}
	if cfg.WirelessStack.Driver != DriverGoburrow || cfg.WirelessStack.Stack != "THREAD_FTD" {
		t.Fatalf("wireless_stack section: %+v", cfg.WirelessStack)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("bootloader:\n  timeout: 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown key error, got nil")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg == nil {
		t.Fatalf("Load(\"\") = %v, %v", cfg, err)
	}
}

func TestResolvePaths_Layout(t *testing.T) {
	base := t.TempDir()
	p, err := ResolvePaths(base)
	if err != nil {
		t.Fatalf("ResolvePaths err=%v", err)
	}
	if err := p.Ensure(); err != nil {
		t.Fatalf("Ensure err=%v", err)
	}
	for _, dir := range []string{p.Scripts, p.Configs, p.Tmp, p.WirelessStack, p.Settings} {
		if filepath.Dir(dir) != p.Base {
			t.Fatalf("%s not under %s", dir, p.Base)
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			t.Fatalf("%s not created: %v", dir, err)
		}
	}
}
