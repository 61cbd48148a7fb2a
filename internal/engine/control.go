package engine

import (
	"pcpaneld/internal/apperr"
	"pcpaneld/internal/hid"
	"pcpaneld/internal/model"
)

// PersistConfigCommand asks the loop to durably save Config through the
// configuration store's self-write-suppressing Persist call (invariant I5).
type PersistConfigCommand struct {
	Config model.Config
}

func (PersistConfigCommand) isCommand() {}

// ReloadConfigCommand asks the loop to re-read the config file from disk
// synchronously and feed the result back in as a ConfigReloadEvent.
type ReloadConfigCommand struct{}

func (ReloadConfigCommand) isCommand() {}

// ShutdownCommand asks the loop to begin orderly shutdown.
type ShutdownCommand struct{}

func (ShutdownCommand) isCommand() {}

func reduceRequest(s *State, e RequestEvent) []Command {
	req := e.Request
	switch req.Kind {
	case ReqGetStatus:
		reply(req, Response{Kind: RespStatus, Status: StatusInfo{
			AudioConnected:  s.AudioConnected,
			HaveHidPosition: s.HavePositions,
			FocusedWindow:   s.Focused,
			HaveFocused:     s.HaveFocused,
			Bindings:        s.Config.Bindings,
		}})
		return nil

	case ReqListApps:
		apps := make([]AppInfo, 0, len(s.Snapshot.SinkInputs))
		for _, in := range s.Snapshot.SinkInputs {
			apps = append(apps, AppInfo{Index: in.Index, Properties: in.Properties, Volume: in.Volume, Muted: in.Muted})
		}
		reply(req, Response{Kind: RespApps, Apps: apps})
		return nil

	case ReqListOutputs:
		devs := make([]DeviceInfo, 0, len(s.Snapshot.Sinks))
		for _, sink := range s.Snapshot.Sinks {
			devs = append(devs, DeviceInfo{Index: sink.Index, Name: sink.Name, Volume: sink.Volume, Muted: sink.Muted})
		}
		reply(req, Response{Kind: RespOutputs, Devices: devs})
		return nil

	case ReqListInputs:
		devs := make([]DeviceInfo, 0, len(s.Snapshot.Sources))
		for _, src := range s.Snapshot.Sources {
			devs = append(devs, DeviceInfo{Index: src.Index, Name: src.Name, Volume: src.Volume, Muted: src.Muted})
		}
		reply(req, Response{Kind: RespInputs, Devices: devs})
		return nil

	case ReqListDevices:
		reply(req, Response{Kind: RespDevices, Hid: []HidDeviceInfo{{
			Serial:    s.Config.DeviceSerial,
			Connected: s.HidConnected,
		}}})
		return nil

	case ReqGetConfig:
		reply(req, Response{Kind: RespConfig, Config: s.Config})
		return nil

	case ReqAssignDial:
		if !req.ControlId.Valid() || req.DialAction == nil {
			reply(req, errResponse(apperr.BindingResolutionEmpty{Control: req.ControlId.String()}))
			return nil
		}
		binding, _ := s.Config.Binding(req.ControlId)
		binding.Dial = req.DialAction
		return assignAndPersist(s, req, binding)

	case ReqAssignButton:
		if !req.ControlId.Valid() || req.ButtonAction == nil {
			reply(req, errResponse(apperr.BindingResolutionEmpty{Control: req.ControlId.String()}))
			return nil
		}
		binding, _ := s.Config.Binding(req.ControlId)
		binding.Button = req.ButtonAction
		return assignAndPersist(s, req, binding)

	case ReqUnassign:
		if !req.ControlId.Valid() {
			reply(req, errResponse(apperr.BindingResolutionEmpty{Control: req.ControlId.String()}))
			return nil
		}
		return assignAndPersist(s, req, model.ControlBinding{})

	case ReqReloadConfig:
		reply(req, Response{Kind: RespOk})
		return []Command{ReloadConfigCommand{}}

	case ReqShutdown:
		reply(req, Response{Kind: RespOk})
		return []Command{ShutdownCommand{}}

	default:
		reply(req, errResponse(apperr.IpcProtocolError{Detail: "unknown request kind"}))
		return nil
	}
}

// assignAndPersist updates s.Config's binding table in place, replies ok,
// and emits a command to durably persist the new config.
func assignAndPersist(s *State, req Request, binding model.ControlBinding) []Command {
	if s.Config.Bindings == nil {
		s.Config.Bindings = make(map[model.ControlId]model.ControlBinding)
	}
	s.Config.Bindings[req.ControlId] = binding
	reply(req, Response{Kind: RespOk})
	return []Command{
		PersistConfigCommand{Config: s.Config},
		LedCommand{Reports: hid.BuildLedReports(s.Config.Leds)},
	}
}

func errResponse(err error) Response {
	return Response{Kind: RespError, Err: err}
}

// reply delivers resp on req.Reply without blocking the reducer if no one
// is listening (a caller that times out and gives up).
func reply(req Request, resp Response) {
	if req.Reply == nil {
		return
	}
	select {
	case req.Reply <- resp:
	default:
	}
}
