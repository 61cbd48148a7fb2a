package hid

import (
	"testing"

	"pcpaneld/internal/model"
)

func TestBuildLedReportsDisabledZonesAreOff(t *testing.T) {
	reports := BuildLedReports(model.LedToggles{})
	if len(reports) != 4 {
		t.Fatalf("len(reports) = %d, want 4", len(reports))
	}
	for _, r := range reports {
		// byte 2 is the first slot's mode byte for every zone.
		if r[2] != LedOff {
			t.Errorf("zone %02x: first slot mode = %d, want off", r[1], r[2])
		}
	}
}

func TestBuildLedReportsEnabledZonesUseDefaultMode(t *testing.T) {
	reports := BuildLedReports(model.LedToggles{Knobs: true, Sliders: true, SliderLabels: true, Logo: true})
	modeByZone := map[byte]byte{
		ZoneSliderStrips: LedVolumeGradient,
		ZoneSliderLabels: LedStatic,
		ZoneKnobRings:    LedVolumeGradient,
		ZoneLogo:         LogoStatic,
	}
	for _, r := range reports {
		zone := r[1]
		want := modeByZone[zone]
		if r[2] != want {
			t.Errorf("zone %02x: mode = %d, want %d", zone, r[2], want)
		}
	}
}

func TestAllOffReportsMatchAllDisabled(t *testing.T) {
	off := AllOffReports()
	disabled := BuildLedReports(model.LedToggles{})
	if len(off) != len(disabled) {
		t.Fatalf("len mismatch")
	}
	for i := range off {
		for j := range off[i] {
			if off[i][j] != disabled[i][j] {
				t.Fatalf("report %d byte %d mismatch: %d != %d", i, j, off[i][j], disabled[i][j])
			}
		}
	}
}
