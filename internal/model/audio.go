package model

import "strings"

// StreamProperties is the subset of a sink-input's properties the engine
// matches against: the executable name, a human-readable app name, and the
// Flatpak application id (empty if the app is not sandboxed via Flatpak).
type StreamProperties struct {
	Binary    string
	Name      string
	FlatpakId string
}

// Matches reports whether p satisfies m: every non-empty field of m must be
// a case-insensitive substring of the corresponding field of p. An empty
// matcher never matches.
func (p StreamProperties) Matches(m AppMatcher) bool {
	if m.Empty() {
		return false
	}
	if m.Binary != "" && !containsFold(p.Binary, m.Binary) {
		return false
	}
	if m.Name != "" && !containsFold(p.Name, m.Name) {
		return false
	}
	if m.FlatpakId != "" && !containsFold(p.FlatpakId, m.FlatpakId) {
		return false
	}
	return true
}

// Sink is an audio output device.
type Sink struct {
	Index  uint32
	Name   string
	Volume Volume
	Muted  bool
}

// Source is an audio input device.
type Source struct {
	Index  uint32
	Name   string
	Volume Volume
	Muted  bool
}

// SinkInput is a single playback stream routed to a sink.
type SinkInput struct {
	Index      uint32
	Properties StreamProperties
	Volume     Volume
	Muted      bool
}

// AudioSnapshot is a coherent, coalesced view of the sound server's state,
// produced as a unit after the four introspection queries, run one after
// another, complete.
type AudioSnapshot struct {
	DefaultSinkName   string
	DefaultSourceName string
	Sinks             []Sink
	Sources           []Source
	SinkInputs        []SinkInput
}

// FocusedWindow is the latest window-activation descriptor reported by the
// focus tracker's compositor script.
type FocusedWindow struct {
	DesktopFile   string
	ResourceName  string
	ResourceClass string
}

func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
