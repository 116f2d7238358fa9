// ABOUTME: Stepped playback volume
// ABOUTME: Saturating volume steps mapped to a linear gain
package player

import "github.com/samber/lo"

const (
	// MaxVolume is the loudest volume step
	MaxVolume  = 16
	volumeStep = 1
)

// PlaybackVolume is a volume step in [0, MaxVolume]. The zero value is
// silent; NewPlaybackVolume starts at full volume.
type PlaybackVolume struct {
	step int
}

// NewPlaybackVolume creates a volume at the given step, clamped to range
func NewPlaybackVolume(step int) PlaybackVolume {
	return PlaybackVolume{step: lo.Clamp(step, 0, MaxVolume)}
}

// Increment raises the volume one step, stopping at MaxVolume
func (v *PlaybackVolume) Increment() {
	v.step = min(v.step+volumeStep, MaxVolume)
}

// Decrement lowers the volume one step, stopping at zero
func (v *PlaybackVolume) Decrement() {
	v.step = max(v.step-volumeStep, 0)
}

// Step returns the current volume step
func (v PlaybackVolume) Step() int {
	return v.step
}

// Gain maps the step to a linear gain in [0, 1]
func (v PlaybackVolume) Gain() float32 {
	return float32(v.step) / float32(MaxVolume)
}

// Percent returns the volume as a whole percentage
func (v PlaybackVolume) Percent() int {
	return v.step * 100 / MaxVolume
}
