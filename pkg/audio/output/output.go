// ABOUTME: Audio output interface definition
// ABOUTME: Common pull-based interface for audio playback backends
package output

import (
	"fmt"
	"strings"
)

// RenderFunc fills out with interleaved 16-bit little-endian PCM. It is
// called on the device's own thread and must write silence when it has
// nothing to play.
type RenderFunc func(out []byte)

// Output represents an audio output device that pulls audio from a
// RenderFunc while started
type Output interface {
	// Open initializes the device without starting it
	Open(sampleRate, channels int, render RenderFunc) error

	// Start begins (or resumes) pulling audio
	Start() error

	// Pause stops pulling audio; it returns once render is no longer running
	Pause() error

	// Close releases output resources
	Close() error
}

// Backend names accepted by New
const (
	BackendMalgo = "malgo"
	BackendOto   = "oto"
	BackendNull  = "null"
)

// New creates an output for the named backend. sampleRate is only used by
// backends that fix their rate for the life of the process.
func New(backend string, sampleRate int) (Output, error) {
	switch strings.ToLower(backend) {
	case BackendMalgo, "":
		return NewMalgo(), nil
	case BackendOto:
		return NewOto(sampleRate), nil
	case BackendNull:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %s (supported: %s, %s, %s)",
			backend, BackendMalgo, BackendOto, BackendNull)
	}
}
