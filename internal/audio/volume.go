package audio

import (
	"math"

	pulseproto "github.com/jfreymuth/pulse/proto"

	"pcpaneld/internal/model"
)

// toNative converts a normalized linear volume into the sound server's
// native per-channel units using its perceptual-weighting (cube-law)
// convention (spec §4.4): native = linear^3 * VolumeNorm.
func toNative(v model.Volume) uint32 {
	linear := float64(v.Clamp())
	native := math.Pow(linear, 3) * float64(pulseproto.VolumeNorm)
	if native < 0 {
		native = 0
	}
	if native > float64(pulseproto.VolumeMax) {
		native = float64(pulseproto.VolumeMax)
	}
	return uint32(native)
}

// fromNative is the inverse: cube root of the native/VolumeNorm ratio.
func fromNative(native uint32) model.Volume {
	ratio := float64(native) / float64(pulseproto.VolumeNorm)
	if ratio < 0 {
		ratio = 0
	}
	return model.Volume(math.Cbrt(ratio)).Clamp()
}

// channelVolume builds a ChannelVolume that applies v uniformly across
// channels entries, matching the entity's last-known channel count so a
// command doesn't silently change its channel layout.
func channelVolume(v model.Volume, channels int) pulseproto.ChannelVolume {
	if channels < 1 {
		channels = 1
	}
	native := toNative(v)
	cv := make(pulseproto.ChannelVolume, channels)
	for i := range cv {
		cv[i] = native
	}
	return cv
}

// averageVolume collapses a possibly multi-channel native volume down to one
// normalized linear value (arithmetic mean of per-channel native levels,
// then cube-rooted).
func averageVolume(cv pulseproto.ChannelVolume) model.Volume {
	if len(cv) == 0 {
		return 0
	}
	var sum uint64
	for _, c := range cv {
		sum += uint64(c)
	}
	return fromNative(uint32(sum / uint64(len(cv))))
}
