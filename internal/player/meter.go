// ABOUTME: Per-channel level meter readings
// ABOUTME: Fixed-size meter state refreshed in place on every UI tick
package player

import "github.com/Resonate-Protocol/boombox/pkg/audio"

// MeterState holds one level reading per channel. Its length is fixed when
// it is created.
type MeterState struct {
	levels []audio.LevelMeter
}

// NewMeterState creates meter state for channels channels (at least one)
func NewMeterState(channels int) MeterState {
	return MeterState{levels: make([]audio.LevelMeter, max(channels, 1))}
}

// Levels returns the per-channel readings
func (m MeterState) Levels() []audio.LevelMeter {
	return m.levels
}

// Channels returns the number of channels metered
func (m MeterState) Channels() int {
	return len(m.levels)
}

// Stereo returns average power for a left/right display. Mono is shown on
// both sides and extra channels are ignored.
func (m MeterState) Stereo() [2]float32 {
	if len(m.levels) == 1 {
		return [2]float32{m.levels[0].Average, m.levels[0].Average}
	}
	return [2]float32{m.levels[0].Average, m.levels[1].Average}
}
