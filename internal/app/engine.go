// ABOUTME: Native audio engine wiring
// ABOUTME: Opens files with the decoders and plays them through a queue on an output device
package app

import (
	"fmt"

	"github.com/Resonate-Protocol/boombox/internal/player"
	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/Resonate-Protocol/boombox/pkg/audio/decode"
	"github.com/Resonate-Protocol/boombox/pkg/audio/output"
	"github.com/Resonate-Protocol/boombox/pkg/audio/queue"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DeviceFactory creates the output device for a new queue
type DeviceFactory func() (output.Output, error)

// Engine implements player.Engine with the packet decoders and the
// software queue
type Engine struct {
	fs        afero.Fs
	newDevice DeviceFactory
}

// NewEngine reads files from fs and plays them on devices from newDevice
func NewEngine(fs afero.Fs, newDevice DeviceFactory) *Engine {
	return &Engine{fs: fs, newDevice: newDevice}
}

// BackendDevices returns a factory for the named output backend
func BackendDevices(backend string, sampleRate int) DeviceFactory {
	return func() (output.Output, error) {
		return output.New(backend, sampleRate)
	}
}

// OpenFile opens path as a packet file
func (e *Engine) OpenFile(path string) (player.File, error) {
	file, err := decode.Open(e.fs, path)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// NewQueue creates a queue on a fresh output device. The queue owns the
// device and closes it on dispose.
func (e *Engine) NewQueue(format audio.StreamDescription, fill audio.FillFunc) (player.Queue, error) {
	device, err := e.newDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	q, err := queue.New(format, fill, device)
	if err != nil {
		if cerr := device.Close(); cerr != nil {
			log.Warnf("Failed to close output: %v", cerr)
		}
		return nil, err
	}
	return q, nil
}
