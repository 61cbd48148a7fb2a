package ipc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pcpaneld/internal/engine"
	"pcpaneld/internal/model"
)

// wireRequest is the flat JSON envelope for every request kind spec.md §6.2
// names. Only the fields relevant to Type are populated by a given request.
type wireRequest struct {
	Type string `json:"type"`

	Control string      `json:"control,omitempty"`
	Dial    *wireTarget `json:"dial,omitempty"`
	Button  *wireButton `json:"button,omitempty"`
}

type wireTarget struct {
	Kind      string `json:"kind"`
	Binary    string `json:"binary,omitempty"`
	Name      string `json:"name,omitempty"`
	FlatpakId string `json:"flatpak_id,omitempty"`
}

type wireButton struct {
	Action  string      `json:"action"`
	Target  *wireTarget `json:"target,omitempty"`
	Media   string      `json:"media,omitempty"`
	Command string      `json:"command,omitempty"`
}

// wireResponse is the flat JSON envelope for every response kind.
type wireResponse struct {
	Type string `json:"type"`

	Status  *wireStatus     `json:"status,omitempty"`
	Apps    []wireApp       `json:"apps,omitempty"`
	Devices []wireDevice    `json:"devices,omitempty"`
	Hid     []wireHidDevice `json:"hid,omitempty"`
	Config  *wireConfig     `json:"config,omitempty"`
	Message string          `json:"message,omitempty"`
}

type wireStatus struct {
	AudioConnected  bool                   `json:"audio_connected"`
	HaveHidPosition bool                   `json:"have_hid_position"`
	FocusedWindow   *wireFocusedWindow     `json:"focused_window,omitempty"`
	Bindings        map[string]wireBinding `json:"bindings"`
}

type wireFocusedWindow struct {
	DesktopFile   string `json:"desktop_file,omitempty"`
	ResourceName  string `json:"resource_name,omitempty"`
	ResourceClass string `json:"resource_class,omitempty"`
}

type wireBinding struct {
	Dial   *wireTarget `json:"dial,omitempty"`
	Button *wireButton `json:"button,omitempty"`
}

type wireApp struct {
	Index     uint32  `json:"index"`
	Binary    string  `json:"binary,omitempty"`
	Name      string  `json:"name,omitempty"`
	FlatpakId string  `json:"flatpak_id,omitempty"`
	Volume    float64 `json:"volume"`
	Muted     bool    `json:"muted"`
}

type wireDevice struct {
	Index  uint32  `json:"index"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

type wireHidDevice struct {
	Serial    string `json:"serial"`
	Connected bool   `json:"connected"`
}

type wireConfig struct {
	DeviceSerial string                 `json:"device_serial,omitempty"`
	Bindings     map[string]wireBinding `json:"bindings"`
}

// decodeRequest parses one wire payload into an engine.Request. reply is
// wired in by the caller since it is never part of the wire format.
func decodeRequest(payload []byte, reply chan engine.Response) (engine.Request, error) {
	var w wireRequest
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return engine.Request{}, fmt.Errorf("decode request: %w", err)
	}

	req := engine.Request{Reply: reply}

	switch w.Type {
	case "get_status":
		req.Kind = engine.ReqGetStatus
	case "list_apps":
		req.Kind = engine.ReqListApps
	case "list_devices":
		req.Kind = engine.ReqListDevices
	case "list_outputs":
		req.Kind = engine.ReqListOutputs
	case "list_inputs":
		req.Kind = engine.ReqListInputs
	case "get_config":
		req.Kind = engine.ReqGetConfig
	case "reload_config":
		req.Kind = engine.ReqReloadConfig
	case "shutdown":
		req.Kind = engine.ReqShutdown

	case "assign_dial":
		req.Kind = engine.ReqAssignDial
		id, err := parseControlId(w.Control)
		if err != nil {
			return engine.Request{}, err
		}
		req.ControlId = id
		target, err := decodeTarget(w.Dial)
		if err != nil {
			return engine.Request{}, err
		}
		req.DialAction = &model.DialAction{Target: target}

	case "assign_button":
		req.Kind = engine.ReqAssignButton
		id, err := parseControlId(w.Control)
		if err != nil {
			return engine.Request{}, err
		}
		req.ControlId = id
		action, err := decodeButton(w.Button)
		if err != nil {
			return engine.Request{}, err
		}
		req.ButtonAction = &action

	case "unassign":
		req.Kind = engine.ReqUnassign
		id, err := parseControlId(w.Control)
		if err != nil {
			return engine.Request{}, err
		}
		req.ControlId = id

	default:
		return engine.Request{}, fmt.Errorf("unknown request type %q", w.Type)
	}

	return req, nil
}

// encodeResponse converts an engine.Response into its wire JSON payload.
func encodeResponse(resp engine.Response) ([]byte, error) {
	w := wireResponse{}

	switch resp.Kind {
	case engine.RespStatus:
		w.Type = "status"
		w.Status = &wireStatus{
			AudioConnected:  resp.Status.AudioConnected,
			HaveHidPosition: resp.Status.HaveHidPosition,
			Bindings:        encodeBindings(resp.Status.Bindings),
		}
		if resp.Status.HaveFocused {
			w.Status.FocusedWindow = &wireFocusedWindow{
				DesktopFile:   resp.Status.FocusedWindow.DesktopFile,
				ResourceName:  resp.Status.FocusedWindow.ResourceName,
				ResourceClass: resp.Status.FocusedWindow.ResourceClass,
			}
		}

	case engine.RespApps:
		w.Type = "apps"
		for _, a := range resp.Apps {
			w.Apps = append(w.Apps, wireApp{
				Index:     a.Index,
				Binary:    a.Properties.Binary,
				Name:      a.Properties.Name,
				FlatpakId: a.Properties.FlatpakId,
				Volume:    float64(a.Volume),
				Muted:     a.Muted,
			})
		}

	case engine.RespOutputs:
		w.Type = "outputs"
		w.Devices = encodeDevices(resp.Devices)

	case engine.RespInputs:
		w.Type = "inputs"
		w.Devices = encodeDevices(resp.Devices)

	case engine.RespDevices:
		w.Type = "devices"
		for _, h := range resp.Hid {
			w.Hid = append(w.Hid, wireHidDevice{Serial: h.Serial, Connected: h.Connected})
		}

	case engine.RespConfig:
		w.Type = "config"
		w.Config = &wireConfig{
			DeviceSerial: resp.Config.DeviceSerial,
			Bindings:     encodeBindings(resp.Config.Bindings),
		}

	case engine.RespOk:
		w.Type = "ok"

	case engine.RespError:
		w.Type = "error"
		if resp.Err != nil {
			w.Message = resp.Err.Error()
		}

	default:
		w.Type = "error"
		w.Message = "unknown response kind"
	}

	return json.Marshal(w)
}

func encodeDevices(devs []engine.DeviceInfo) []wireDevice {
	out := make([]wireDevice, 0, len(devs))
	for _, d := range devs {
		out = append(out, wireDevice{Index: d.Index, Name: d.Name, Volume: float64(d.Volume), Muted: d.Muted})
	}
	return out
}

func encodeBindings(bindings map[model.ControlId]model.ControlBinding) map[string]wireBinding {
	out := make(map[string]wireBinding, len(bindings))
	for id, b := range bindings {
		wb := wireBinding{}
		if b.Dial != nil {
			wb.Dial = encodeTarget(b.Dial.Target)
		}
		if b.Button != nil {
			wb.Button = encodeButtonAction(*b.Button)
		}
		out[id.String()] = wb
	}
	return out
}

func encodeTarget(t model.AudioTarget) *wireTarget {
	switch t.Kind {
	case model.DefaultOutput:
		return &wireTarget{Kind: "default_output"}
	case model.DefaultInput:
		return &wireTarget{Kind: "default_input"}
	case model.FocusedApp:
		return &wireTarget{Kind: "focused_app"}
	case model.App:
		return &wireTarget{Kind: "app", Binary: t.Matcher.Binary, Name: t.Matcher.Name, FlatpakId: t.Matcher.FlatpakId}
	default:
		return nil
	}
}

func encodeButtonAction(b model.ButtonAction) *wireButton {
	switch b.Kind {
	case model.ActionMute:
		return &wireButton{Action: "mute", Target: encodeTarget(b.Target)}
	case model.ActionMedia:
		return &wireButton{Action: "media", Media: string(b.Media)}
	case model.ActionExec:
		return &wireButton{Action: "exec", Command: b.Command}
	default:
		return nil
	}
}

func decodeTarget(w *wireTarget) (model.AudioTarget, error) {
	if w == nil {
		return model.AudioTarget{}, fmt.Errorf("missing target")
	}
	switch strings.ToLower(w.Kind) {
	case "default_output", "default_sink":
		return model.AudioTarget{Kind: model.DefaultOutput}, nil
	case "default_input", "default_source":
		return model.AudioTarget{Kind: model.DefaultInput}, nil
	case "focused_app":
		return model.AudioTarget{Kind: model.FocusedApp}, nil
	case "app":
		m := model.AppMatcher{Binary: w.Binary, Name: w.Name, FlatpakId: w.FlatpakId}
		if m.Empty() {
			return model.AudioTarget{}, fmt.Errorf("target \"app\" requires at least one of binary/name/flatpak_id")
		}
		return model.AudioTarget{Kind: model.App, Matcher: m}, nil
	default:
		return model.AudioTarget{}, fmt.Errorf("unknown target kind %q", w.Kind)
	}
}

func decodeButton(w *wireButton) (model.ButtonAction, error) {
	if w == nil {
		return model.ButtonAction{}, fmt.Errorf("missing button action")
	}
	switch strings.ToLower(w.Action) {
	case "mute":
		target, err := decodeTarget(w.Target)
		if err != nil {
			return model.ButtonAction{}, err
		}
		return model.ButtonAction{Kind: model.ActionMute, Target: target}, nil
	case "media":
		cmd := model.MediaCommand(strings.ToLower(w.Media))
		switch cmd {
		case model.MediaPlayPause, model.MediaPlay, model.MediaPause, model.MediaNext, model.MediaPrevious, model.MediaStop:
			return model.ButtonAction{Kind: model.ActionMedia, Media: cmd}, nil
		default:
			return model.ButtonAction{}, fmt.Errorf("unknown media command %q", w.Media)
		}
	case "exec":
		if w.Command == "" {
			return model.ButtonAction{}, fmt.Errorf("action \"exec\" requires a non-empty command")
		}
		return model.ButtonAction{Kind: model.ActionExec, Command: w.Command}, nil
	default:
		return model.ButtonAction{}, fmt.Errorf("unknown button action %q", w.Action)
	}
}

// parseControlId parses the wire control name ("knob1".."knob5",
// "slider1".."slider4") into a model.ControlId.
func parseControlId(s string) (model.ControlId, error) {
	lower := strings.ToLower(s)
	var kind model.ControlKind
	var rest string
	switch {
	case strings.HasPrefix(lower, "knob"):
		kind = model.Knob
		rest = lower[len("knob"):]
	case strings.HasPrefix(lower, "slider"):
		kind = model.Slider
		rest = lower[len("slider"):]
	default:
		return model.ControlId{}, fmt.Errorf("unknown control %q", s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return model.ControlId{}, fmt.Errorf("unknown control %q", s)
	}
	id := model.ControlId{Kind: kind, Index: n - 1}
	if !id.Valid() {
		return model.ControlId{}, fmt.Errorf("control %q out of range", s)
	}
	return id, nil
}
