// ABOUTME: Playback controller for a single audio file
// ABOUTME: Owns the file, the queue and the buffer pump for one session
package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyPath is returned when asked to play an empty path
var ErrEmptyPath = errors.New("path is empty")

// Controller plays one file. It owns the queue and the pump that feeds it,
// and disposes the queue before releasing the pump.
type Controller struct {
	file     File
	queue    Queue
	state    *PlaybackState
	bridge   *RunStateBridge
	format   audio.StreamDescription
	config   BufferConfiguration
	metadata map[string]string
	duration time.Duration
	closed   bool
}

// NewController opens path, prepares a queue for it and pre-buffers audio.
// Run-state changes are reported through notifier.
func NewController(engine Engine, path string, notifier Notifier) (*Controller, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	file, err := engine.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	c, err := prepare(engine, file, notifier)
	if err != nil {
		if cerr := file.Close(); cerr != nil {
			log.Warnf("Failed to close %s: %v", path, cerr)
		}
		return nil, err
	}

	log.Printf("Prepared %s: %.0fHz, %d channels, %d-byte buffers, %d packets each (vbr=%v)",
		path, c.format.SampleRate, c.format.ChannelsPerFrame,
		c.config.BufferSize, c.config.PacketsPerBuffer, c.config.VBR)

	return c, nil
}

func prepare(engine Engine, file File, notifier Notifier) (*Controller, error) {
	format, err := file.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to read format: %w", err)
	}
	maxPacket, err := file.PacketSizeUpperBound()
	if err != nil {
		return nil, fmt.Errorf("failed to read packet size upper bound: %w", err)
	}
	metadata, err := file.Metadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	duration, err := file.EstimatedDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to read estimated duration: %w", err)
	}
	cookie, err := file.MagicCookie()
	if err != nil {
		return nil, fmt.Errorf("failed to read magic cookie: %w", err)
	}

	cfg, err := NewBufferConfiguration(format, maxPacket)
	if err != nil {
		return nil, err
	}

	state := newPlaybackState(file, cfg)

	queue, err := engine.NewQueue(format, state.Fill)
	if err != nil {
		return nil, fmt.Errorf("failed to create output queue: %w", err)
	}
	state.attach(queue)

	c := &Controller{
		file:     file,
		queue:    queue,
		state:    state,
		format:   format,
		config:   cfg,
		metadata: metadata,
		duration: duration,
	}

	if err := c.setup(cookie, notifier); err != nil {
		if derr := queue.Dispose(true); derr != nil {
			log.Warnf("Failed to dispose queue: %v", derr)
		}
		state.release()
		return nil, err
	}

	return c, nil
}

func (c *Controller) setup(cookie []byte, notifier Notifier) error {
	if len(cookie) > 0 {
		if err := c.queue.SetMagicCookie(cookie); err != nil {
			return fmt.Errorf("failed to set magic cookie: %w", err)
		}
	}

	c.bridge = newRunStateBridge(c.queue, notifier)
	if err := c.queue.AddRunStateListener(c.bridge.Changed); err != nil {
		return fmt.Errorf("failed to listen for run state: %w", err)
	}

	buffers := make([]*audio.Buffer, 0, BufferCount)
	for i := 0; i < BufferCount; i++ {
		buf, err := c.queue.AllocateBuffer(c.config.BufferSize, c.config.packetDescriptionCount())
		if err != nil {
			return fmt.Errorf("failed to allocate buffer %d: %w", i, err)
		}
		buffers = append(buffers, buf)
	}

	// Pre-buffering failures surface through Err once playback ends
	c.state.Prebuffer(buffers)
	return nil
}

// Start enables metering and starts playback
func (c *Controller) Start() error {
	if err := c.queue.EnableMetering(true); err != nil {
		return fmt.Errorf("failed to enable metering: %w", err)
	}
	c.bridge.arm()
	if err := c.queue.Start(); err != nil {
		c.bridge.disarm()
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Pause pauses playback
func (c *Controller) Pause() error {
	if err := c.queue.Pause(); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	return nil
}

// Resume continues paused playback
func (c *Controller) Resume() error {
	if err := c.queue.Start(); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	return nil
}

// Stop stops playback and returns once the queue has stopped
func (c *Controller) Stop() error {
	if err := c.queue.Stop(true); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return nil
}

// SetVolume applies volume to the queue. A gain outside [0, 1] is a
// programming error and panics.
func (c *Controller) SetVolume(volume PlaybackVolume) error {
	gain := volume.Gain()
	if gain < 0 || gain > 1 {
		panic(fmt.Sprintf("volume gain out of range: %v", gain))
	}
	if err := c.queue.SetVolume(gain); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// MeterLevel refreshes meter in place. Failures are expected around
// start and stop and can be retried on the next tick.
func (c *Controller) MeterLevel(meter *MeterState) error {
	if err := c.queue.MeterLevels(meter.levels); err != nil {
		return fmt.Errorf("failed to read meter levels: %w", err)
	}
	return nil
}

// PlaybackTime returns the elapsed playback time, or None while the queue
// has no running timeline
func (c *Controller) PlaybackTime() mo.Option[time.Duration] {
	sampleTime, err := c.queue.CurrentTime()
	if err != nil {
		if !errors.Is(err, audio.ErrInvalidRunState) {
			log.Debugf("Playback time unavailable: %v", err)
		}
		return mo.None[time.Duration]()
	}
	return mo.Some(c.format.FramesToDuration(sampleTime))
}

// Metadata returns the file's metadata
func (c *Controller) Metadata() map[string]string {
	return c.metadata
}

// EstimatedDuration returns the file's estimated duration
func (c *Controller) EstimatedDuration() time.Duration {
	return c.duration
}

// NewMeterState creates meter state sized for the file's channels
func (c *Controller) NewMeterState() MeterState {
	return NewMeterState(int(c.format.ChannelsPerFrame))
}

// Stats returns the buffer pump's counters
func (c *Controller) Stats() PumpStats {
	return c.state.Stats()
}

// Err returns the first failure the buffer pump hit
func (c *Controller) Err() error {
	return c.state.Err()
}

// Close disposes the queue, then releases the pump and closes the file
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if err := c.queue.Dispose(true); err != nil {
		errs = append(errs, fmt.Errorf("failed to dispose queue: %w", err))
	}
	c.state.release()
	if err := c.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close file: %w", err))
	}
	return errors.Join(errs...)
}
