// Package signalpipe implements the per-control jitter-suppression pipeline:
// endpoint bypass, rolling average, delta threshold, and debounce.
package signalpipe

import (
	"time"

	"pcpaneld/internal/model"
)

// Pipeline is a per-control stateful transformer. It is not safe for
// concurrent use; the engine owns exactly one per ControlId, bound or not.
type Pipeline struct {
	params model.SignalParams

	window      []int
	lastEmitted model.HwValue
	haveEmitted bool
	lastEmitAt  time.Time
}

// New creates a Pipeline with the given parameters. Creating one always
// starts in a reset state (invariant I2).
func New(params model.SignalParams) *Pipeline {
	p := &Pipeline{params: params}
	p.Reset()
	return p
}

// Reset clears the rolling window, last-emitted sample, and timestamp.
func (p *Pipeline) Reset() {
	n := p.params.RollingWindow
	if n < 1 {
		n = 1
	}
	p.window = p.window[:0]
	p.haveEmitted = false
	p.lastEmitted = 0
	p.lastEmitAt = time.Time{}
}

// Feed processes one raw hardware sample at time now. It returns the
// filtered value and true if the pipeline emits, or (0, false) on
// suppression.
func (p *Pipeline) Feed(raw model.HwValue, now time.Time) (model.HwValue, bool) {
	// Stage 1: endpoint bypass.
	if raw.Endpoint() {
		p.lastEmitted = raw
		p.haveEmitted = true
		p.lastEmitAt = now
		return raw, true
	}

	// Stage 2: rolling average.
	n := p.params.RollingWindow
	if n < 1 {
		n = 1
	}
	p.window = append(p.window, int(raw))
	if len(p.window) > n {
		p.window = p.window[len(p.window)-n:]
	}
	sum := 0
	for _, s := range p.window {
		sum += s
	}
	avg := model.HwValue(sum / len(p.window))

	// Stage 3: delta threshold.
	if p.haveEmitted {
		delta := int(avg) - int(p.lastEmitted)
		if delta < 0 {
			delta = -delta
		}
		if delta < p.params.DeltaThreshold {
			return 0, false
		}
	}

	// Stage 4: debounce.
	if p.haveEmitted && p.params.DebounceMillis > 0 {
		elapsed := now.Sub(p.lastEmitAt)
		if elapsed < time.Duration(p.params.DebounceMillis)*time.Millisecond {
			return 0, false
		}
	}

	p.lastEmitted = avg
	p.haveEmitted = true
	p.lastEmitAt = now
	return avg, true
}
