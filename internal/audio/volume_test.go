package audio

import (
	"math"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"

	"pcpaneld/internal/model"
)

func TestToNativeEndpoints(t *testing.T) {
	if toNative(0) != 0 {
		t.Errorf("toNative(0) = %d, want 0", toNative(0))
	}
	if got := toNative(1); got != uint32(pulseproto.VolumeNorm) {
		t.Errorf("toNative(1) = %d, want %d", got, uint32(pulseproto.VolumeNorm))
	}
}

func TestFromNativeEndpoints(t *testing.T) {
	if fromNative(0) != 0 {
		t.Errorf("fromNative(0) = %v, want 0", fromNative(0))
	}
	if got := fromNative(uint32(pulseproto.VolumeNorm)); math.Abs(float64(got)-1.0) > 0.001 {
		t.Errorf("fromNative(VolumeNorm) = %v, want 1.0", got)
	}
}

func TestNativeRoundTrip(t *testing.T) {
	for _, v := range []model.Volume{0, 0.1, 0.25, 0.5, 0.75, 1.0} {
		native := toNative(v)
		back := fromNative(native)
		if math.Abs(float64(back-v)) > 0.01 {
			t.Errorf("round trip v=%v: toNative->fromNative=%v", v, back)
		}
	}
}

func TestChannelVolumeAppliesUniformly(t *testing.T) {
	cv := channelVolume(0.5, 2)
	if len(cv) != 2 {
		t.Fatalf("len = %d, want 2", len(cv))
	}
	if cv[0] != cv[1] {
		t.Errorf("channels should match: %v", cv)
	}
}

func TestChannelVolumeMinimumOneChannel(t *testing.T) {
	cv := channelVolume(0.5, 0)
	if len(cv) != 1 {
		t.Fatalf("len = %d, want 1", len(cv))
	}
}

func TestAverageVolumeEmpty(t *testing.T) {
	if got := averageVolume(nil); got != 0 {
		t.Errorf("averageVolume(nil) = %v, want 0", got)
	}
}

func TestAverageVolumeUniform(t *testing.T) {
	cv := channelVolume(0.6, 2)
	got := averageVolume(cv)
	if math.Abs(float64(got)-0.6) > 0.01 {
		t.Errorf("averageVolume = %v, want ~0.6", got)
	}
}
