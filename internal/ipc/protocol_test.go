package ipc

import (
	"strings"
	"testing"

	"pcpaneld/internal/engine"
	"pcpaneld/internal/model"
)

func TestDecodeRequestAssignDial(t *testing.T) {
	reply := make(chan engine.Response, 1)
	payload := []byte(`{"type":"assign_dial","control":"knob2","dial":{"kind":"app","binary":"spotify"}}`)

	req, err := decodeRequest(payload, reply)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if req.Kind != engine.ReqAssignDial {
		t.Fatalf("Kind = %v, want ReqAssignDial", req.Kind)
	}
	want := model.ControlId{Kind: model.Knob, Index: 1}
	if req.ControlId != want {
		t.Errorf("ControlId = %+v, want %+v", req.ControlId, want)
	}
	if req.DialAction == nil || req.DialAction.Target.Kind != model.App || req.DialAction.Target.Matcher.Binary != "spotify" {
		t.Errorf("DialAction = %+v", req.DialAction)
	}
}

func TestDecodeRequestUnknownTypeErrors(t *testing.T) {
	reply := make(chan engine.Response, 1)
	_, err := decodeRequest([]byte(`{"type":"bogus"}`), reply)
	if err == nil {
		t.Fatal("expected an error for an unknown request type")
	}
}

func TestDecodeRequestUnassign(t *testing.T) {
	reply := make(chan engine.Response, 1)
	req, err := decodeRequest([]byte(`{"type":"unassign","control":"slider3"}`), reply)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	want := model.ControlId{Kind: model.Slider, Index: 2}
	if req.Kind != engine.ReqUnassign || req.ControlId != want {
		t.Errorf("req = %+v, want Kind=ReqUnassign ControlId=%+v", req, want)
	}
}

func TestEncodeResponseStatus(t *testing.T) {
	resp := engine.Response{
		Kind: engine.RespStatus,
		Status: engine.StatusInfo{
			AudioConnected: true,
			HaveFocused:    true,
			FocusedWindow:  model.FocusedWindow{ResourceName: "firefox"},
			Bindings: map[model.ControlId]model.ControlBinding{
				{Kind: model.Knob, Index: 0}: {Dial: &model.DialAction{Target: model.AudioTarget{Kind: model.DefaultOutput}}},
			},
		},
	}

	out, err := encodeResponse(resp)
	if err != nil {
		t.Fatalf("encodeResponse: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"type":"status"`) || !strings.Contains(s, `"resource_name":"firefox"`) || !strings.Contains(s, `"knob1"`) {
		t.Errorf("encoded response missing expected fields: %s", s)
	}
}

func TestEncodeResponseError(t *testing.T) {
	resp := engine.Response{Kind: engine.RespError, Err: errString("boom")}
	out, err := encodeResponse(resp)
	if err != nil {
		t.Fatalf("encodeResponse: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"type":"error"`) || !strings.Contains(s, `"message":"boom"`) {
		t.Errorf("encoded error response missing expected fields: %s", s)
	}
}

func TestParseControlIdRejectsOutOfRange(t *testing.T) {
	if _, err := parseControlId("knob9"); err == nil {
		t.Fatal("expected an error for an out-of-range knob index")
	}
	if _, err := parseControlId("slider0"); err == nil {
		t.Fatal("expected an error for a 1-indexed slider given 0")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
