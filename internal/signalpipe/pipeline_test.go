package signalpipe

import (
	"testing"
	"time"

	"pcpaneld/internal/model"
)

func paramsFor(window, delta, debounceMs int) model.SignalParams {
	return model.SignalParams{
		RollingWindow:  window,
		DeltaThreshold: delta,
		DebounceMillis: debounceMs,
		VolumeExponent: 1.0,
	}
}

func TestEndpointBypassAlwaysEmits(t *testing.T) {
	p := New(paramsFor(8, 5, 50))
	now := time.Now()
	for _, v := range []model.HwValue{0, 255} {
		got, ok := p.Feed(v, now)
		if !ok {
			t.Fatalf("endpoint %d: expected emit", v)
		}
		if got != v {
			t.Fatalf("endpoint %d: got %d", v, got)
		}
	}
}

func TestDeltaThresholdSuppresses(t *testing.T) {
	p := New(paramsFor(1, 10, 0))
	now := time.Now()
	if _, ok := p.Feed(100, now); !ok {
		t.Fatal("first sample should always pass once warmed")
	}
	if _, ok := p.Feed(105, now); ok {
		t.Fatal("delta below threshold should suppress")
	}
	if _, ok := p.Feed(120, now); !ok {
		t.Fatal("delta above threshold should pass")
	}
}

func TestDebounceSuppresses(t *testing.T) {
	p := New(paramsFor(1, 0, 100))
	base := time.Now()
	if _, ok := p.Feed(50, base); !ok {
		t.Fatal("first sample should pass")
	}
	if _, ok := p.Feed(80, base.Add(10*time.Millisecond)); ok {
		t.Fatal("sample within debounce window should suppress")
	}
	if _, ok := p.Feed(80, base.Add(150*time.Millisecond)); !ok {
		t.Fatal("sample after debounce window should pass")
	}
}

func TestResetClearsState(t *testing.T) {
	p := New(paramsFor(4, 0, 0))
	now := time.Now()
	p.Feed(200, now)
	p.Reset()
	// Immediately after reset, delta threshold has nothing to compare against,
	// so the very next sample must pass regardless of magnitude.
	if _, ok := p.Feed(10, now); !ok {
		t.Fatal("first sample after reset should pass")
	}
}

func TestRollingAverageTruncates(t *testing.T) {
	p := New(paramsFor(2, 0, 0))
	now := time.Now()
	p.Feed(10, now) // window=[10], avg=10, first emit
	got, ok := p.Feed(11, now)
	if !ok {
		t.Fatal("expected emit")
	}
	// window=[10,11], avg = 21/2 = 10 (truncated)
	if got != 10 {
		t.Fatalf("got %d, want truncated average 10", got)
	}
}
