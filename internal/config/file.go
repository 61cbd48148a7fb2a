// Package config implements the Configuration Store: a TOML-backed,
// live-reloadable policy file with self-write suppression.
package config

import (
	"fmt"
	"strings"

	"pcpaneld/internal/model"
)

// FileConfig is the on-disk TOML shape. It is intentionally a separate type
// from model.Config: the file format uses string discriminators and a fixed
// set of named control sections (matching spec.md §6.3 literally), while
// model.Config uses the engine's tagged-union types.
type FileConfig struct {
	Device   DeviceSection   `toml:"device"`
	Signal   SignalSection   `toml:"signal"`
	Controls ControlsSection `toml:"controls"`
	Leds     LedsSection     `toml:"leds"`
	Logging  LoggingSection  `toml:"logging"`
	IPC      IPCSection      `toml:"ipc"`
}

type DeviceSection struct {
	Serial string `toml:"serial,omitempty"`
}

type SignalFamily struct {
	RollingWindow  int `toml:"rolling_window"`
	DeltaThreshold int `toml:"delta_threshold"`
	DebounceMs     int `toml:"debounce_ms"`
}

type SignalSection struct {
	Knob           SignalFamily `toml:"knob"`
	Slider         SignalFamily `toml:"slider"`
	VolumeExponent float64      `toml:"volume_exponent"`
}

type LedsSection struct {
	Knobs        bool `toml:"knobs"`
	Sliders      bool `toml:"sliders"`
	SliderLabels bool `toml:"slider_labels"`
	Logo         bool `toml:"logo"`
}

type LoggingSection struct {
	Level string `toml:"level"`
}

type IPCSection struct {
	SocketPath string `toml:"socket_path,omitempty"`
}

// DialSection is the [controls.<x>.dial] table. Target is one of
// default_output/default_sink, default_input/default_source, focused_app, app.
// Binary/Name/FlatpakId are only meaningful when Target == "app".
type DialSection struct {
	Target    string `toml:"target"`
	Binary    string `toml:"binary,omitempty"`
	Name      string `toml:"name,omitempty"`
	FlatpakId string `toml:"flatpak_id,omitempty"`
}

// ButtonSection is the [controls.<x>.button] table. Action is one of
// mute/media/exec.
type ButtonSection struct {
	Action    string `toml:"action"`
	Target    string `toml:"target,omitempty"`
	Binary    string `toml:"binary,omitempty"`
	Name      string `toml:"name,omitempty"`
	FlatpakId string `toml:"flatpak_id,omitempty"`
	Media     string `toml:"media,omitempty"`
	Exec      string `toml:"exec,omitempty"`
}

type ControlSection struct {
	Dial   *DialSection   `toml:"dial,omitempty"`
	Button *ButtonSection `toml:"button,omitempty"`
}

// ControlsSection names the nine control slots explicitly (rather than a
// map[string]ControlSection) so strict TOML decoding rejects typos like
// "controls.knob6" instead of silently accepting them as a new map key.
type ControlsSection struct {
	Knob1   *ControlSection `toml:"knob1,omitempty"`
	Knob2   *ControlSection `toml:"knob2,omitempty"`
	Knob3   *ControlSection `toml:"knob3,omitempty"`
	Knob4   *ControlSection `toml:"knob4,omitempty"`
	Knob5   *ControlSection `toml:"knob5,omitempty"`
	Slider1 *ControlSection `toml:"slider1,omitempty"`
	Slider2 *ControlSection `toml:"slider2,omitempty"`
	Slider3 *ControlSection `toml:"slider3,omitempty"`
	Slider4 *ControlSection `toml:"slider4,omitempty"`
}

func (cs *ControlsSection) slot(id model.ControlId) **ControlSection {
	switch {
	case id.Kind == model.Knob && id.Index == 0:
		return &cs.Knob1
	case id.Kind == model.Knob && id.Index == 1:
		return &cs.Knob2
	case id.Kind == model.Knob && id.Index == 2:
		return &cs.Knob3
	case id.Kind == model.Knob && id.Index == 3:
		return &cs.Knob4
	case id.Kind == model.Knob && id.Index == 4:
		return &cs.Knob5
	case id.Kind == model.Slider && id.Index == 0:
		return &cs.Slider1
	case id.Kind == model.Slider && id.Index == 1:
		return &cs.Slider2
	case id.Kind == model.Slider && id.Index == 2:
		return &cs.Slider3
	case id.Kind == model.Slider && id.Index == 3:
		return &cs.Slider4
	default:
		return nil
	}
}

// DefaultFileConfig returns a fully populated FileConfig with sane defaults,
// written to disk the first time the daemon runs with no config present.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Signal: SignalSection{
			Knob:           SignalFamily{RollingWindow: 8, DeltaThreshold: 2, DebounceMs: 20},
			Slider:         SignalFamily{RollingWindow: 8, DeltaThreshold: 2, DebounceMs: 20},
			VolumeExponent: 2.0,
		},
		Controls: ControlsSection{
			Knob1: &ControlSection{
				Dial: &DialSection{Target: "default_output"},
			},
		},
		Leds: LedsSection{Knobs: true, Sliders: true, SliderLabels: false, Logo: true},
		Logging: LoggingSection{
			Level: "info",
		},
		IPC: IPCSection{
			SocketPath: "", // resolved at runtime from XDG_RUNTIME_DIR
		},
	}
}

// ToModel converts the on-disk shape into the engine's in-memory Config.
func (f FileConfig) ToModel() (model.Config, error) {
	cfg := model.Config{
		DeviceSerial: f.Device.Serial,
		KnobParams: model.SignalParams{
			RollingWindow:  f.Signal.Knob.RollingWindow,
			DeltaThreshold: f.Signal.Knob.DeltaThreshold,
			DebounceMillis: f.Signal.Knob.DebounceMs,
			VolumeExponent: f.Signal.VolumeExponent,
		},
		SliderParams: model.SignalParams{
			RollingWindow:  f.Signal.Slider.RollingWindow,
			DeltaThreshold: f.Signal.Slider.DeltaThreshold,
			DebounceMillis: f.Signal.Slider.DebounceMs,
			VolumeExponent: f.Signal.VolumeExponent,
		},
		Leds: model.LedToggles{
			Knobs:        f.Leds.Knobs,
			Sliders:      f.Leds.Sliders,
			SliderLabels: f.Leds.SliderLabels,
			Logo:         f.Leds.Logo,
		},
		Bindings: make(map[model.ControlId]model.ControlBinding),
	}

	assign := func(id model.ControlId, cs *ControlSection) error {
		if cs == nil {
			return nil
		}
		var binding model.ControlBinding
		if cs.Dial != nil {
			target, err := parseTarget(cs.Dial.Target, cs.Dial.Binary, cs.Dial.Name, cs.Dial.FlatpakId)
			if err != nil {
				return fmt.Errorf("controls.%s.dial: %w", id, err)
			}
			binding.Dial = &model.DialAction{Target: target}
		}
		if cs.Button != nil {
			action, err := parseButton(*cs.Button)
			if err != nil {
				return fmt.Errorf("controls.%s.button: %w", id, err)
			}
			binding.Button = &action
		}
		if binding.Dial != nil || binding.Button != nil {
			cfg.Bindings[id] = binding
		}
		return nil
	}

	for _, id := range model.AllControlIds() {
		slot := f.Controls.slot(id)
		if slot == nil {
			continue
		}
		if err := assign(id, *slot); err != nil {
			return model.Config{}, err
		}
	}

	return cfg, nil
}

// FromModel converts the engine's in-memory Config back into the on-disk
// shape, for persistence.
func FromModel(cfg model.Config) FileConfig {
	f := FileConfig{
		Device: DeviceSection{Serial: cfg.DeviceSerial},
		Signal: SignalSection{
			Knob: SignalFamily{
				RollingWindow:  cfg.KnobParams.RollingWindow,
				DeltaThreshold: cfg.KnobParams.DeltaThreshold,
				DebounceMs:     cfg.KnobParams.DebounceMillis,
			},
			Slider: SignalFamily{
				RollingWindow:  cfg.SliderParams.RollingWindow,
				DeltaThreshold: cfg.SliderParams.DeltaThreshold,
				DebounceMs:     cfg.SliderParams.DebounceMillis,
			},
			VolumeExponent: cfg.KnobParams.VolumeExponent,
		},
		Leds: LedsSection{
			Knobs:        cfg.Leds.Knobs,
			Sliders:      cfg.Leds.Sliders,
			SliderLabels: cfg.Leds.SliderLabels,
			Logo:         cfg.Leds.Logo,
		},
	}

	for id, binding := range cfg.Bindings {
		cs := &ControlSection{}
		if binding.Dial != nil {
			cs.Dial = dialToSection(*binding.Dial)
		}
		if binding.Button != nil {
			cs.Button = buttonToSection(*binding.Button)
		}
		slot := f.Controls.slot(id)
		if slot != nil {
			*slot = cs
		}
	}
	return f
}

func parseTarget(target, binary, name, flatpakId string) (model.AudioTarget, error) {
	switch strings.ToLower(target) {
	case "default_output", "default_sink":
		return model.AudioTarget{Kind: model.DefaultOutput}, nil
	case "default_input", "default_source":
		return model.AudioTarget{Kind: model.DefaultInput}, nil
	case "focused_app":
		return model.AudioTarget{Kind: model.FocusedApp}, nil
	case "app":
		m := model.AppMatcher{Binary: binary, Name: name, FlatpakId: flatpakId}
		if m.Empty() {
			return model.AudioTarget{}, fmt.Errorf("target \"app\" requires at least one of binary/name/flatpak_id")
		}
		return model.AudioTarget{Kind: model.App, Matcher: m}, nil
	default:
		return model.AudioTarget{}, fmt.Errorf("unknown target %q", target)
	}
}

func targetToStrings(t model.AudioTarget) (target, binary, name, flatpakId string) {
	switch t.Kind {
	case model.DefaultOutput:
		return "default_output", "", "", ""
	case model.DefaultInput:
		return "default_input", "", "", ""
	case model.FocusedApp:
		return "focused_app", "", "", ""
	case model.App:
		return "app", t.Matcher.Binary, t.Matcher.Name, t.Matcher.FlatpakId
	default:
		return "default_output", "", "", ""
	}
}

func dialToSection(d model.DialAction) *DialSection {
	target, binary, name, flatpakId := targetToStrings(d.Target)
	return &DialSection{Target: target, Binary: binary, Name: name, FlatpakId: flatpakId}
}

func parseButton(b ButtonSection) (model.ButtonAction, error) {
	switch strings.ToLower(b.Action) {
	case "mute":
		target, err := parseTarget(b.Target, b.Binary, b.Name, b.FlatpakId)
		if err != nil {
			return model.ButtonAction{}, err
		}
		return model.ButtonAction{Kind: model.ActionMute, Target: target}, nil
	case "media":
		cmd := model.MediaCommand(strings.ToLower(b.Media))
		switch cmd {
		case model.MediaPlayPause, model.MediaPlay, model.MediaPause, model.MediaNext, model.MediaPrevious, model.MediaStop:
			return model.ButtonAction{Kind: model.ActionMedia, Media: cmd}, nil
		default:
			return model.ButtonAction{}, fmt.Errorf("unknown media command %q", b.Media)
		}
	case "exec":
		if b.Exec == "" {
			return model.ButtonAction{}, fmt.Errorf("action \"exec\" requires a non-empty exec string")
		}
		return model.ButtonAction{Kind: model.ActionExec, Command: b.Exec}, nil
	default:
		return model.ButtonAction{}, fmt.Errorf("unknown button action %q", b.Action)
	}
}

func buttonToSection(b model.ButtonAction) *ButtonSection {
	switch b.Kind {
	case model.ActionMute:
		target, binary, name, flatpakId := targetToStrings(b.Target)
		return &ButtonSection{Action: "mute", Target: target, Binary: binary, Name: name, FlatpakId: flatpakId}
	case model.ActionMedia:
		return &ButtonSection{Action: "media", Media: string(b.Media)}
	case model.ActionExec:
		return &ButtonSection{Action: "exec", Exec: b.Command}
	default:
		return &ButtonSection{}
	}
}
