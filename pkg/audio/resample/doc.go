// ABOUTME: Sample rate conversion for output devices
// ABOUTME: Linear interpolation over interleaved 32-bit samples
// Package resample converts interleaved audio between sample rates with
// linear interpolation. The oto backend uses it when a file's rate differs
// from the rate its process-wide context was opened at.
//
// The resampler keeps the last input frame between calls, so a stream can
// be converted in arbitrary chunks. Reset drops that state.
//
//	r := resample.New(44100, 48000, 2)
//	out := make([]int32, r.OutputSamplesNeeded(len(in)))
//	n := r.Resample(in, out)
package resample
