// Package engine holds the daemon's single mutable-state owner: a reducer
// that consumes hardware, audio, focus, config, and control-plane events and
// emits commands, plus the daemon loop that runs it (spec §4.7).
package engine

import (
	"pcpaneld/internal/model"
	"pcpaneld/internal/signalpipe"
)

// State is the engine's entire mutable state. Exactly one goroutine (the
// loop in loop.go) ever touches it; every mutation happens inside Reduce.
type State struct {
	Config model.Config

	Snapshot       model.AudioSnapshot
	AudioConnected bool

	HidConnected bool

	Focused     model.FocusedWindow
	HaveFocused bool

	Positions     [9]model.HwValue
	HavePositions bool

	Pipelines map[model.ControlId]*signalpipe.Pipeline

	// LastApplied remembers the last Volume sent per ControlId so that when
	// a matching stream reappears (app restart), the slider's last setting
	// is re-applied without the user moving it (spec §4.7 item 4).
	LastApplied map[model.ControlId]model.Volume
}

// NewState builds a fresh State for cfg: one pipeline per ControlId the
// config tracks (invariant I2).
func NewState(cfg model.Config) *State {
	s := &State{
		Config:      cfg,
		LastApplied: make(map[model.ControlId]model.Volume),
	}
	s.rebuildPipelines()
	return s
}

// rebuildPipelines replaces every pipeline with a freshly reset one, using
// the current Config's per-family parameters.
func (s *State) rebuildPipelines() {
	s.Pipelines = make(map[model.ControlId]*signalpipe.Pipeline)
	for _, id := range model.AllControlIds() {
		s.Pipelines[id] = signalpipe.New(s.Config.ParamsFor(id))
	}
}

func positionIndex(id model.ControlId) int {
	if id.Kind == model.Slider {
		return 5 + id.Index
	}
	return id.Index
}
