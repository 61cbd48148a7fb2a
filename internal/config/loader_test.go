package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileAppliesDefaultsForOmittedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcpaneld.toml")
	const doc = `
[device]
serial = "ABC123"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Device.Serial != "ABC123" {
		t.Errorf("Device.Serial = %q, want ABC123", cfg.Device.Serial)
	}
	if cfg.Signal.Knob.RollingWindow != 8 {
		t.Errorf("omitted signal.knob section should keep default, got %d", cfg.Signal.Knob.RollingWindow)
	}
}

func TestLoadFileRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcpaneld.toml")
	const doc = `
[device]
seriel = "typo"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSaveFileThenLoadFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "pcpaneld.toml")
	cfg := DefaultFileConfig()
	cfg.Device.Serial = "XYZ"
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if back.Device.Serial != "XYZ" {
		t.Errorf("Device.Serial = %q, want XYZ", back.Device.Serial)
	}
}

func TestFlagOverridesApply(t *testing.T) {
	cfg := DefaultFileConfig()
	serial := "OVERRIDE"
	level := "debug"
	o := FlagOverrides{DeviceSerial: &serial, LogLevel: &level}
	o.Apply(&cfg)
	if cfg.Device.Serial != "OVERRIDE" || cfg.Logging.Level != "debug" {
		t.Errorf("got %+v", cfg)
	}
}

func TestFlagOverridesNilIgnored(t *testing.T) {
	cfg := DefaultFileConfig()
	before := cfg
	(FlagOverrides{}).Apply(&cfg)
	if cfg != before {
		t.Errorf("nil overrides should not change config")
	}
}

func TestValidateRejectsBadSignalParams(t *testing.T) {
	cfg := DefaultFileConfig()
	cfg.Signal.Knob.RollingWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for rolling_window=0")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultFileConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir available")
	}
	got := ExpandPath("~/pcpaneld/config.toml")
	want := filepath.Join(home, "pcpaneld/config.toml")
	if got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}
	if ExpandPath("/abs/path") != "/abs/path" {
		t.Error("absolute path should pass through unchanged")
	}
}

func TestDefaultSocketPathUsesXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got, want := DefaultSocketPath(), "/run/user/1000/pcpaneld.sock"; got != want {
		t.Errorf("DefaultSocketPath() = %q, want %q", got, want)
	}
}
