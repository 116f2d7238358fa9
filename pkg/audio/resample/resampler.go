// ABOUTME: Streaming linear resampler for converting audio sample rates
// ABOUTME: Interpolates across chunk boundaries so pulled audio stays continuous
package resample

import "math"

// Resampler converts interleaved samples between rates by linear
// interpolation. Consecutive calls continue one stream: the last input
// frame of a chunk is carried into the next so there is no seam.
type Resampler struct {
	channels int
	ratio    float64 // input frames per output frame
	position float64 // relative to the current chunk; -1 addresses the carried frame
	carry    []int32
	primed   bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		channels: channels,
		ratio:    float64(inputRate) / float64(outputRate),
		carry:    make([]int32, channels),
	}
}

// Resample consumes all of input and writes interpolated samples to
// output, returning how many samples were written. Size output with
// OutputSamplesNeeded; input that does not fit is skipped.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	frame := func(i int) []int32 {
		if i < 0 {
			return r.carry
		}
		return input[i*r.channels : (i+1)*r.channels]
	}

	if !r.primed {
		r.position = 0
	}

	outIdx := 0
	for outIdx < outputFrames {
		idx := int(math.Floor(r.position))
		if idx+1 >= inputFrames {
			break
		}

		frac := r.position - float64(idx)
		a, b := frame(idx), frame(idx+1)
		for ch := 0; ch < r.channels; ch++ {
			v := float64(a[ch])*(1.0-frac) + float64(b[ch])*frac
			output[outIdx*r.channels+ch] = int32(v)
		}

		outIdx++
		r.position += r.ratio
	}

	copy(r.carry, frame(inputFrames-1))
	r.primed = true
	r.position = math.Max(r.position-float64(inputFrames), -1)

	return outIdx * r.channels
}

// Reset forgets the carried frame and interpolation position
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	for i := range r.carry {
		r.carry[i] = 0
	}
}

// OutputSamplesNeeded is the output size that consumes inputSamples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(math.Ceil(float64(inputFrames) / r.ratio))
	return outputFrames * r.channels
}

// InputSamplesNeeded is the input size that produces about outputSamples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(math.Ceil(float64(outputFrames) * r.ratio))
	return inputFrames * r.channels
}
