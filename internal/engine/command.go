package engine

import (
	"pcpaneld/internal/audio"
	"pcpaneld/internal/model"
)

// Command is a marker interface for everything Reduce asks the loop to
// carry out. Unlike Event, these flow OUT of the reducer.
type Command interface{ isCommand() }

// AudioCommand is forwarded verbatim to the audio subsystem's Commands channel.
type AudioCommand struct {
	Cmd audio.Command
}

func (AudioCommand) isCommand() {}

// LedCommand is forwarded to the HID subsystem's Commands channel, one
// report per slice entry.
type LedCommand struct {
	Reports [][]byte
}

func (LedCommand) isCommand() {}

// ExecCommand forks and forgets a shell command; a non-zero exit is logged
// at warn by the loop, never propagated (spec §4.7 failure semantics).
type ExecCommand struct {
	Shell string
}

func (ExecCommand) isCommand() {}

// MediaCommandOut hands a transport action to an external collaborator,
// which this repo does not implement (decided Open Question, see DESIGN.md).
type MediaCommandOut struct {
	Cmd model.MediaCommand
}

func (MediaCommandOut) isCommand() {}
