package engine

import (
	"time"

	"pcpaneld/internal/audio"
	"pcpaneld/internal/curve"
	"pcpaneld/internal/hid"
	"pcpaneld/internal/model"
)

// Reduce applies one Event to s, mutating it in place, and returns the
// commands the loop must carry out as a result. It is logically pure over
// (state, event) -> (state', commands): the only side effect is the mutation
// of the single State the loop owns, never I/O.
func Reduce(s *State, ev Event) []Command {
	switch e := ev.(type) {
	case PositionsEvent:
		return reducePositions(s, e)
	case ButtonEvent:
		return reduceButton(s, e)
	case HidConnectionEvent:
		s.HidConnected = e.Connected
		if !e.Connected {
			s.HavePositions = false
			return nil
		}
		return []Command{LedCommand{Reports: hid.BuildLedReports(s.Config.Leds)}}
	case AudioNotificationEvent:
		return reduceAudioNotification(s, e)
	case FocusEvent:
		s.Focused = e.Window
		s.HaveFocused = true
		return nil
	case ConfigReloadEvent:
		return reduceConfigReload(s, e)
	case RequestEvent:
		return reduceRequest(s, e)
	default:
		return nil
	}
}

// reducePositions implements spec §4.7 item 2: diff against the previous
// 9-slot snapshot, and for each changed slot run its pipeline, curve, and
// (on emit) dispatch a volume command.
func reducePositions(s *State, e PositionsEvent) []Command {
	// While the HID device is known disconnected, the subsystem publishes an
	// all-zero snapshot so it doesn't retain stale positions across a
	// reconnect; that snapshot updates our baseline but must not dispatch
	// commands (a user did not actually move anything to its endpoint).
	if !s.HidConnected {
		s.Positions = e.Positions
		s.HavePositions = true
		return nil
	}

	var cmds []Command
	now := time.Now()

	for _, id := range model.AllControlIds() {
		idx := positionIndex(id)
		raw := e.Positions[idx]
		if s.HavePositions && raw == s.Positions[idx] {
			continue
		}

		pipeline := s.Pipelines[id]
		filtered, emitted := pipeline.Feed(raw, now)
		if !emitted {
			continue
		}

		binding, ok := s.Config.Binding(id)
		if !ok || binding.Dial == nil {
			continue
		}

		vol := curve.Apply(filtered, s.Config.ParamsFor(id).VolumeExponent)
		refs := resolveTargets(s, binding.Dial.Target)
		for _, ref := range refs {
			cmds = append(cmds, AudioCommand{Cmd: audio.Command{
				Kind:   audio.CmdSetVolume,
				Target: ref.kind,
				Index:  ref.index,
				Volume: vol,
			}})
		}
		s.LastApplied[id] = vol
	}

	s.Positions = e.Positions
	s.HavePositions = true
	return cmds
}

// reduceButton implements spec §4.7 item 3: dispatch only on press.
func reduceButton(s *State, e ButtonEvent) []Command {
	if !e.Pressed {
		return nil
	}
	binding, ok := s.Config.Binding(e.Id)
	if !ok || binding.Button == nil {
		return nil
	}

	switch binding.Button.Kind {
	case model.ActionMute:
		var cmds []Command
		for _, ref := range resolveTargets(s, binding.Button.Target) {
			cmds = append(cmds, AudioCommand{Cmd: audio.Command{
				Kind:   audio.CmdToggleMute,
				Target: ref.kind,
				Index:  ref.index,
			}})
		}
		return cmds
	case model.ActionMedia:
		return []Command{MediaCommandOut{Cmd: binding.Button.Media}}
	case model.ActionExec:
		return []Command{ExecCommand{Shell: binding.Button.Command}}
	default:
		return nil
	}
}

// reduceAudioNotification implements spec §4.7 item 4: update the snapshot,
// then re-apply LastApplied volume to any App/FocusedApp-targeted control
// whose stream just (re)appeared.
func reduceAudioNotification(s *State, e AudioNotificationEvent) []Command {
	switch e.Notification.Kind {
	case audio.Connected:
		s.AudioConnected = true
		return nil
	case audio.Disconnected:
		s.AudioConnected = false
		return nil
	case audio.StateSnapshot:
		prev := s.Snapshot
		s.Snapshot = e.Notification.Snapshot
		return reapplyOnReappear(s, prev)
	default:
		return nil
	}
}

func reapplyOnReappear(s *State, prev model.AudioSnapshot) []Command {
	var cmds []Command
	for id, binding := range s.Config.Bindings {
		if binding.Dial == nil {
			continue
		}
		target := binding.Dial.Target
		if target.Kind != model.App && target.Kind != model.FocusedApp {
			continue
		}
		vol, ok := s.LastApplied[id]
		if !ok {
			continue
		}
		for _, ref := range resolveTargets(s, target) {
			if ref.kind != audio.TargetSinkInput {
				continue
			}
			if streamPresent(prev, ref.index) {
				continue // already had it before this snapshot, nothing new
			}
			cmds = append(cmds, AudioCommand{Cmd: audio.Command{
				Kind:   audio.CmdSetVolume,
				Target: ref.kind,
				Index:  ref.index,
				Volume: vol,
			}})
		}
	}
	return cmds
}

func streamPresent(snap model.AudioSnapshot, index uint32) bool {
	for _, in := range snap.SinkInputs {
		if in.Index == index {
			return true
		}
	}
	return false
}

// reduceConfigReload implements spec §4.7 item 7: replace Config, rebuild
// pipelines, and re-emit LED commands for the new [leds] state.
func reduceConfigReload(s *State, e ConfigReloadEvent) []Command {
	s.Config = e.Config
	s.rebuildPipelines()
	return []Command{LedCommand{Reports: hid.BuildLedReports(s.Config.Leds)}}
}
