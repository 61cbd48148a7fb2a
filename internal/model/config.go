package model

// SignalParams holds the Signal Pipeline's per-family tunables plus the
// shared volume exponent.
type SignalParams struct {
	RollingWindow   int     // N >= 1
	DeltaThreshold  int     // D >= 0
	DebounceMillis  int     // T >= 0
	VolumeExponent  float64 // e > 0, shared across families
}

// LedToggles mirrors the [leds] config section: four independent zone enables.
type LedToggles struct {
	Knobs       bool
	Sliders     bool
	SliderLabels bool
	Logo        bool
}

// Config is the in-memory policy table: device identity, signal tuning,
// LED toggles, and the knob/slider -> binding table.
type Config struct {
	DeviceSerial string // optional; empty means "accept any device"

	SliderParams SignalParams
	KnobParams   SignalParams

	Leds LedToggles

	// Bindings is keyed by ControlId. Every ControlId present in the config
	// MUST have a corresponding SignalPipeline (invariant I2).
	Bindings map[ControlId]ControlBinding
}

// Binding returns the binding for id, and whether one is present.
func (c *Config) Binding(id ControlId) (ControlBinding, bool) {
	if c.Bindings == nil {
		return ControlBinding{}, false
	}
	b, ok := c.Bindings[id]
	return b, ok
}

// AllControlIds returns every ControlId a complete config tracks a pipeline for:
// 5 knobs and 4 sliders, regardless of whether each has a binding yet.
func AllControlIds() []ControlId {
	ids := make([]ControlId, 0, 9)
	for i := 0; i < 5; i++ {
		ids = append(ids, ControlId{Kind: Knob, Index: i})
	}
	for i := 0; i < 4; i++ {
		ids = append(ids, ControlId{Kind: Slider, Index: i})
	}
	return ids
}

// ParamsFor returns the SignalParams applicable to id's family.
func (c *Config) ParamsFor(id ControlId) SignalParams {
	if id.Kind == Slider {
		return c.SliderParams
	}
	return c.KnobParams
}
