// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with a pull-based data callback
package output

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	log "github.com/sirupsen/logrus"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	render     RenderFunc
	mu         sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{}
}

// Open initializes the playback device with the specified format
func (m *Malgo) Open(sampleRate, channels int, render RenderFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("output already open (%dHz, %d channels)", m.sampleRate, m.channels)
	}

	// Create malgo context if needed
	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	m.render = render
	frameSize := uint32(channels * 2)

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.render(pOutputSample[:frameCount*frameSize])
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.device = device
	m.sampleRate = sampleRate
	m.channels = channels

	log.Printf("Audio output initialized: %dHz, %d channels, 16-bit (malgo)", sampleRate, channels)

	return nil
}

// Start starts the device
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return fmt.Errorf("output not initialized")
	}
	if m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

// Pause stops the device; miniaudio waits for the data callback to return
func (m *Malgo) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil || !m.device.IsStarted() {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.device.IsStarted() {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}
