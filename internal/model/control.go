// Package model holds the daemon's core data types: the physical control
// addressing scheme, hardware sample types, normalized volume, and the
// policy types (targets, matchers, bindings) that the engine resolves
// against a live audio snapshot.
package model

import "fmt"

// ControlKind distinguishes the two physical control families.
type ControlKind int

const (
	Knob ControlKind = iota
	Slider
)

func (k ControlKind) String() string {
	switch k {
	case Knob:
		return "knob"
	case Slider:
		return "slider"
	default:
		return "unknown"
	}
}

// ControlId addresses one physical control: a knob (0..4) or a slider (0..3).
// Knobs may carry a dial action and a button action; sliders only a dial action.
type ControlId struct {
	Kind  ControlKind
	Index int
}

func (c ControlId) String() string {
	return fmt.Sprintf("%s%d", c.Kind, c.Index+1)
}

// Valid reports whether the index is in range for the control's kind.
func (c ControlId) Valid() bool {
	switch c.Kind {
	case Knob:
		return c.Index >= 0 && c.Index < 5
	case Slider:
		return c.Index >= 0 && c.Index < 4
	default:
		return false
	}
}

// HwValue is an unsigned 8-bit ADC sample as reported by the device.
type HwValue uint8

// Endpoint reports whether v is one of the two bypass endpoints (0 or 255).
func (v HwValue) Endpoint() bool {
	return v == 0 || v == 255
}

// Volume is a normalized linear factor, always clamped to [0.0, 1.0] on ingress.
type Volume float64

// Clamp returns v clamped to [0, 1].
func (v Volume) Clamp() Volume {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MediaCommand is the closed set of transport actions a Media button action can carry.
type MediaCommand string

const (
	MediaPlayPause MediaCommand = "play_pause"
	MediaPlay      MediaCommand = "play"
	MediaPause     MediaCommand = "pause"
	MediaNext      MediaCommand = "next"
	MediaPrevious  MediaCommand = "previous"
	MediaStop      MediaCommand = "stop"
)

// AppMatcher maps a matcher field name to a substring to match, case-insensitively,
// against a sink-input's properties. Recognized fields: binary, name, flatpak_id.
// An empty matcher matches nothing; multiple fields are ANDed.
type AppMatcher struct {
	Binary    string `toml:"binary,omitempty"`
	Name      string `toml:"name,omitempty"`
	FlatpakId string `toml:"flatpak_id,omitempty"`
}

// Empty reports whether the matcher has no fields set, in which case it matches nothing.
func (m AppMatcher) Empty() bool {
	return m.Binary == "" && m.Name == "" && m.FlatpakId == ""
}

// AudioTargetKind distinguishes the AudioTarget sum type's variants.
type AudioTargetKind int

const (
	DefaultOutput AudioTargetKind = iota
	DefaultInput
	App
	FocusedApp
)

// AudioTarget is the sum type {DefaultOutput, DefaultInput, App(AppMatcher), FocusedApp}.
// Matcher is only meaningful when Kind == App.
type AudioTarget struct {
	Kind    AudioTargetKind
	Matcher AppMatcher
}

// DialAction is the single-variant dial action: Volume(AudioTarget).
type DialAction struct {
	Target AudioTarget
}

// ButtonActionKind distinguishes the ButtonAction sum type's variants.
type ButtonActionKind int

const (
	ActionMute ButtonActionKind = iota
	ActionMedia
	ActionExec
)

// ButtonAction is one of Mute(AudioTarget), Media(MediaCommand), Exec(shell-string).
type ButtonAction struct {
	Kind    ButtonActionKind
	Target  AudioTarget  // meaningful when Kind == ActionMute
	Media   MediaCommand // meaningful when Kind == ActionMedia
	Command string       // meaningful when Kind == ActionExec
}

// ControlBinding pairs an optional dial action with an optional button action.
// A nil Dial/Button pointer means "unbound".
type ControlBinding struct {
	Dial   *DialAction
	Button *ButtonAction
}
