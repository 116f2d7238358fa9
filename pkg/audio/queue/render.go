// ABOUTME: Device-side rendering for the buffer queue
// ABOUTME: Copies enqueued audio out, applies gain and measures levels
package queue

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

// render is the device's RenderFunc. It runs on the device thread and never
// calls user code; drained buffers and run-state changes go to the engine.
func (q *Queue) render(out []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	if q.running {
		for n < len(out) {
			if q.current == nil {
				if len(q.pending) == 0 {
					break
				}
				q.current, q.pending = q.pending[0], q.pending[1:]
				q.offset = 0
			}

			copied := copy(out[n:], q.current.Data[q.offset:q.current.Size])
			n += copied
			q.offset += uint32(copied)

			if q.offset >= q.current.Size {
				buf := q.current
				q.current = nil
				q.engine.post(func() { q.callFill(buf) })
			}
		}
	}
	n -= n % q.frameBytes
	clear(out[n:])

	applyGain(out[:n], q.gain)
	if q.metering {
		measure(out, q.channels, q.levels)
	}
	q.frames += int64(n / q.frameBytes)

	if q.running && q.stopping && q.current == nil && len(q.pending) == 0 {
		q.running = false
		q.stopping = false
		q.drained.Broadcast()
		q.engine.post(q.finishDrain)
	}
}

// applyGain scales 16-bit little-endian samples in place
func applyGain(pcm []byte, gain float32) {
	if gain >= 1 {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float32(sample)*gain)))
	}
}

// measure computes RMS average and peak per channel over one device period
func measure(pcm []byte, channels int, levels []audio.LevelMeter) {
	frames := len(pcm) / (channels * 2)
	if frames == 0 {
		return
	}

	for ch := 0; ch < channels && ch < len(levels); ch++ {
		var sum float64
		var peak float64
		for f := 0; f < frames; f++ {
			i := (f*channels + ch) * 2
			v := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) / 32768.0
			sum += v * v
			peak = math.Max(peak, math.Abs(v))
		}
		levels[ch] = audio.LevelMeter{
			Average: float32(math.Sqrt(sum / float64(frames))),
			Peak:    float32(peak),
		}
	}
}
