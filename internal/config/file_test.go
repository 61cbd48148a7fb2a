package config

import (
	"testing"

	"pcpaneld/internal/model"
)

func TestDefaultFileConfigRoundTrips(t *testing.T) {
	f := DefaultFileConfig()
	cfg, err := f.ToModel()
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if cfg.KnobParams.RollingWindow != 8 {
		t.Errorf("KnobParams.RollingWindow = %d, want 8", cfg.KnobParams.RollingWindow)
	}
	back := FromModel(cfg)
	if back.Signal.Knob.RollingWindow != f.Signal.Knob.RollingWindow {
		t.Errorf("round trip lost knob rolling_window: got %d, want %d", back.Signal.Knob.RollingWindow, f.Signal.Knob.RollingWindow)
	}
}

func TestParseTargetSynonyms(t *testing.T) {
	cases := map[string]model.AudioTargetKind{
		"default_output": model.DefaultOutput,
		"default_sink":   model.DefaultOutput,
		"default_input":  model.DefaultInput,
		"default_source": model.DefaultInput,
		"focused_app":    model.FocusedApp,
	}
	for s, want := range cases {
		got, err := parseTarget(s, "", "", "")
		if err != nil {
			t.Fatalf("parseTarget(%q): %v", s, err)
		}
		if got.Kind != want {
			t.Errorf("parseTarget(%q).Kind = %v, want %v", s, got.Kind, want)
		}
	}
}

func TestParseTargetAppRequiresMatcher(t *testing.T) {
	if _, err := parseTarget("app", "", "", ""); err == nil {
		t.Fatal("expected error for app target with empty matcher")
	}
	got, err := parseTarget("app", "firefox", "", "")
	if err != nil {
		t.Fatalf("parseTarget: %v", err)
	}
	if got.Kind != model.App || got.Matcher.Binary != "firefox" {
		t.Errorf("got %+v", got)
	}
}

func TestParseButtonKinds(t *testing.T) {
	mute, err := parseButton(ButtonSection{Action: "mute", Target: "default_output"})
	if err != nil || mute.Kind != model.ActionMute {
		t.Fatalf("mute: %+v, %v", mute, err)
	}
	media, err := parseButton(ButtonSection{Action: "media", Media: "play_pause"})
	if err != nil || media.Kind != model.ActionMedia || media.Media != model.MediaPlayPause {
		t.Fatalf("media: %+v, %v", media, err)
	}
	exec, err := parseButton(ButtonSection{Action: "exec", Exec: "notify-send hi"})
	if err != nil || exec.Kind != model.ActionExec || exec.Command != "notify-send hi" {
		t.Fatalf("exec: %+v, %v", exec, err)
	}
	if _, err := parseButton(ButtonSection{Action: "exec", Exec: ""}); err == nil {
		t.Fatal("expected error for exec with empty command")
	}
	if _, err := parseButton(ButtonSection{Action: "bogus"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestToModelBindingAssignment(t *testing.T) {
	f := DefaultFileConfig()
	f.Controls.Slider1 = &ControlSection{Dial: &DialSection{Target: "app", Binary: "spotify"}}
	cfg, err := f.ToModel()
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	binding, ok := cfg.Binding(model.ControlId{Kind: model.Slider, Index: 0})
	if !ok || binding.Dial == nil || binding.Dial.Target.Matcher.Binary != "spotify" {
		t.Fatalf("slider1 binding = %+v, ok=%v", binding, ok)
	}
}

func TestToModelRejectsMalformedTarget(t *testing.T) {
	f := DefaultFileConfig()
	f.Controls.Knob2 = &ControlSection{Dial: &DialSection{Target: "not_a_real_target"}}
	if _, err := f.ToModel(); err == nil {
		t.Fatal("expected error for malformed target")
	}
}
