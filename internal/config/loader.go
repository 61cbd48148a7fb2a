package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadFile reads and strictly parses a TOML config file, applying
// DefaultFileConfig first so any section the file omits keeps its default.
//
//   - The file must be valid TOML.
//   - Unknown keys are rejected (helps catch typos) via the decoder's
//     metadata check below.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultFileConfig()

	meta, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("decode config toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("decode config toml: unknown key %q", undecoded[0].String())
	}

	return cfg, nil
}

// SaveFile writes cfg to path as TOML, creating parent directories as needed.
// Used both for writing the default config on first start and for persisting
// assignments made over the control-plane socket.
func SaveFile(path string, cfg FileConfig) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config toml: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// FlagOverrides carries command-line overrides applied on top of a loaded
// file. Each field is a pointer so "unset" (nil) is distinguishable from
// "explicitly set to the zero value".
type FlagOverrides struct {
	DeviceSerial *string
	LogLevel     *string
	SocketPath   *string
}

// Apply merges o into cfg. Nil pointers are ignored.
func (o FlagOverrides) Apply(cfg *FileConfig) {
	if cfg == nil {
		return
	}
	if o.DeviceSerial != nil {
		cfg.Device.Serial = *o.DeviceSerial
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.SocketPath != nil {
		cfg.IPC.SocketPath = *o.SocketPath
	}
}

// Validate checks config invariants and returns a descriptive error. Intended
// to run after defaults + file + flag overrides are merged, and again after
// every hot reload (a rejected reload leaves the prior config in effect).
func (f *FileConfig) Validate() error {
	validateFamily := func(section string, fam SignalFamily) error {
		if fam.RollingWindow < 1 {
			return fmt.Errorf("signal.%s.rolling_window must be >= 1", section)
		}
		if fam.DeltaThreshold < 0 {
			return fmt.Errorf("signal.%s.delta_threshold must be >= 0", section)
		}
		if fam.DebounceMs < 0 {
			return fmt.Errorf("signal.%s.debounce_ms must be >= 0", section)
		}
		return nil
	}
	if err := validateFamily("knob", f.Signal.Knob); err != nil {
		return err
	}
	if err := validateFamily("slider", f.Signal.Slider); err != nil {
		return err
	}
	if f.Signal.VolumeExponent <= 0 {
		return errors.New("signal.volume_exponent must be > 0")
	}

	// Reject malformed control sections early rather than deferring to
	// ToModel, so a reload that would fail to parse is rejected before any
	// state changes.
	if _, err := f.ToModel(); err != nil {
		return err
	}

	if f.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	switch f.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", f.Logging.Level)
	}

	return nil
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}

// DefaultSocketPath resolves the control-plane socket path per spec §6.2:
// $XDG_RUNTIME_DIR/pcpaneld.sock, falling back to /run/user/{uid}/pcpaneld.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pcpaneld.sock")
	}
	return fmt.Sprintf("/run/user/%d/pcpaneld.sock", os.Getuid())
}

// ResolvedSocketPath is a small convenience used by cmd/pcpaneld to pick
// between an explicit ipc.socket_path and the XDG-derived default.
func ResolvedSocketPath(f FileConfig) string {
	if f.IPC.SocketPath != "" {
		return ExpandPath(f.IPC.SocketPath)
	}
	return DefaultSocketPath()
}
