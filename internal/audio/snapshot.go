package audio

import "pcpaneld/internal/model"

// snapshotsEqual reports whether a and b carry the same observable state, so
// the coalescing loop can skip publishing a notification when a poll finds
// nothing changed.
func snapshotsEqual(a, b model.AudioSnapshot) bool {
	if a.DefaultSinkName != b.DefaultSinkName || a.DefaultSourceName != b.DefaultSourceName {
		return false
	}
	if len(a.Sinks) != len(b.Sinks) || len(a.Sources) != len(b.Sources) || len(a.SinkInputs) != len(b.SinkInputs) {
		return false
	}
	for i := range a.Sinks {
		if a.Sinks[i] != b.Sinks[i] {
			return false
		}
	}
	for i := range a.Sources {
		if a.Sources[i] != b.Sources[i] {
			return false
		}
	}
	for i := range a.SinkInputs {
		if a.SinkInputs[i] != b.SinkInputs[i] {
			return false
		}
	}
	return true
}
