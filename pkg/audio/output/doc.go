// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the pull-based Output interface with malgo, oto and null backends
// Package output provides audio playback devices.
//
// Devices pull 16-bit interleaved PCM from a RenderFunc on their own thread.
// Backends: malgo (miniaudio, default), oto (one context per process,
// resampled when the stream rate differs), null (silent, real-time clocked).
//
// Example:
//
//	out, err := output.New("malgo", 0)
//	err = out.Open(48000, 2, func(buf []byte) { fill(buf) })
//	err = out.Start()
package output
