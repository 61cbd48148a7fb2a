package hid

import "pcpaneld/internal/model"

// BuildLedReports rebuilds all four LED zone reports from the current
// config's toggles (spec §4.3): disabled zones get the "off" mode, enabled
// zones get their default mode. Called on connect, on reconnect, and on
// every config reload.
func BuildLedReports(leds model.LedToggles) [][]byte {
	return [][]byte{
		LedReport(ZoneSliderStrips, zoneSlots(4, leds.Sliders, LedVolumeGradient)),
		LedReport(ZoneSliderLabels, zoneSlots(4, leds.SliderLabels, LedStatic)),
		LedReport(ZoneKnobRings, zoneSlots(5, leds.Knobs, LedVolumeGradient)),
		LedReport(ZoneLogo, zoneSlots(1, leds.Logo, LogoStatic)),
	}
}

func zoneSlots(n int, enabled bool, onMode byte) []LedSlot {
	mode := LedOff
	if enabled {
		mode = onMode
	}
	slots := make([]LedSlot, n)
	for i := range slots {
		slots[i] = LedSlot{Mode: mode}
	}
	return slots
}

// AllOffReports builds the best-effort shutdown command: every zone off.
func AllOffReports() [][]byte {
	return BuildLedReports(model.LedToggles{})
}
