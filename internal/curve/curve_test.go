package curve

import (
	"math"
	"testing"

	"pcpaneld/internal/model"
)

func TestEndpoints(t *testing.T) {
	for _, e := range []float64{0.5, 1.0, 2.0, 3.7} {
		if got := Apply(0, e); got != 0.0 {
			t.Errorf("Apply(0, %v) = %v, want 0.0", e, got)
		}
		if got := Apply(255, e); got != 1.0 {
			t.Errorf("Apply(255, %v) = %v, want 1.0", e, got)
		}
	}
}

func TestMonotonic(t *testing.T) {
	for _, e := range []float64{0.3, 1.0, 2.5} {
		prev := Apply(0, e)
		for v := 1; v <= 255; v++ {
			cur := Apply(model.HwValue(v), e)
			if cur < prev {
				t.Fatalf("Apply(%d, %v) = %v < previous %v (not monotonic)", v, e, cur, prev)
			}
			prev = cur
		}
	}
}

func TestBounds(t *testing.T) {
	for _, e := range []float64{0.1, 1.0, 5.0} {
		for v := 0; v <= 255; v += 5 {
			got := Apply(model.HwValue(v), e)
			if got < 0 || got > 1 {
				t.Errorf("Apply(%d, %v) = %v out of [0,1]", v, e, got)
			}
		}
	}
}

func TestKnownValues(t *testing.T) {
	cases := []struct {
		v    model.HwValue
		e    float64
		want float64
	}{
		{128, 1.0, 128.0 / 255.0},
		{64, 1.0, 64.0 / 255.0},
		{192, 1.0, 192.0 / 255.0},
		{128, 2.0, math.Pow(128.0/255.0, 2.0)},
	}
	for _, c := range cases {
		got := float64(Apply(c.v, c.e))
		if math.Abs(got-c.want) > 0.005 {
			t.Errorf("Apply(%d, %v) = %v, want %v", c.v, c.e, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, e := range []float64{0.5, 1.0, 2.0, 3.0} {
		for v := 0; v <= 255; v++ {
			vol := Apply(model.HwValue(v), e)
			hw := Inverse(vol, e)
			back := Apply(hw, e)
			if math.Abs(float64(back-vol)) > 1.0/255.0 {
				t.Errorf("round trip v=%d e=%v: Apply=%v Inverse->Apply=%v", v, e, vol, back)
			}
		}
	}
}
