package engine

import (
	"strings"

	"pcpaneld/internal/audio"
	"pcpaneld/internal/model"
)

// entityRef addresses one audio-server entity a Command can target.
type entityRef struct {
	kind  audio.TargetKind
	index uint32
}

// resolveTargets implements spec §4.7's four-strategy target resolution.
// Multiple matches (App, FocusedApp) all receive the command.
func resolveTargets(s *State, target model.AudioTarget) []entityRef {
	switch target.Kind {
	case model.DefaultOutput:
		for _, sink := range s.Snapshot.Sinks {
			if sink.Name == s.Snapshot.DefaultSinkName {
				return []entityRef{{audio.TargetSink, sink.Index}}
			}
		}
		return nil

	case model.DefaultInput:
		for _, src := range s.Snapshot.Sources {
			if src.Name == s.Snapshot.DefaultSourceName {
				return []entityRef{{audio.TargetSource, src.Index}}
			}
		}
		return nil

	case model.App:
		var refs []entityRef
		for _, in := range s.Snapshot.SinkInputs {
			if in.Properties.Matches(target.Matcher) {
				refs = append(refs, entityRef{audio.TargetSinkInput, in.Index})
			}
		}
		return refs

	case model.FocusedApp:
		return resolveFocusedApp(s)

	default:
		return nil
	}
}

// resolveFocusedApp matches the stored FocusedWindow against sink-inputs
// using the ordered priority from spec §4.7; the first strategy that yields
// at least one match wins.
func resolveFocusedApp(s *State) []entityRef {
	if !s.HaveFocused {
		return nil
	}
	win := s.Focused

	strategies := []func(model.StreamProperties) bool{
		func(p model.StreamProperties) bool {
			return win.DesktopFile != "" && strings.EqualFold(win.DesktopFile, p.FlatpakId)
		},
		func(p model.StreamProperties) bool {
			return win.ResourceName != "" && strings.EqualFold(win.ResourceName, p.Binary)
		},
		func(p model.StreamProperties) bool {
			return win.DesktopFile != "" && strings.EqualFold(win.DesktopFile, p.Binary)
		},
		func(p model.StreamProperties) bool {
			return win.ResourceClass != "" && strings.EqualFold(win.ResourceClass, p.Binary)
		},
	}

	for _, match := range strategies {
		var refs []entityRef
		for _, in := range s.Snapshot.SinkInputs {
			if match(in.Properties) {
				refs = append(refs, entityRef{audio.TargetSinkInput, in.Index})
			}
		}
		if len(refs) > 0 {
			return refs
		}
	}
	// Game-compatibility fallback (process-group / sibling PID matching)
	// needs process-table introspection the sink-input properties this
	// client reads do not carry; spec §4.7 names it as a fallback only for
	// exact-match misses, and the native protocol exposes no PID field to
	// drive it, so it is not implemented here (see DESIGN.md).
	return nil
}
