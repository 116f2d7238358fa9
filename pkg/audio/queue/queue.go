// ABOUTME: Buffer queue that feeds decoded packets to an output device
// ABOUTME: Recycles buffers through a fill callback and reports run-state changes
package queue

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/Resonate-Protocol/boombox/pkg/audio/output"
	log "github.com/sirupsen/logrus"
)

// Queue plays enqueued buffers in order on an output device. When a buffer
// has been played it is handed back to the fill callback for refilling.
//
// Fill callbacks and run-state listeners run on the queue's engine
// goroutine, one at a time. Stop(true) and Dispose must not be called from
// inside either of them.
type Queue struct {
	format     audio.StreamDescription
	fill       audio.FillFunc
	device     output.Output
	channels   int
	frameBytes int

	mu        sync.Mutex
	drained   *sync.Cond
	buffers   map[*audio.Buffer]struct{}
	pending   []*audio.Buffer
	current   *audio.Buffer
	offset    uint32
	opened    bool
	running   bool
	stopping  bool
	resetting bool
	disposed  bool
	frames    int64
	gain      float32
	metering  bool
	levels    []audio.LevelMeter
	cookie    []byte
	listeners []audio.RunStateFunc

	// callbackMu serializes fill calls
	callbackMu sync.Mutex

	engine *engine
}

// New creates a stopped queue for format that refills drained buffers with
// fill and plays them on device. The device is opened on first Start.
func New(format audio.StreamDescription, fill audio.FillFunc, device output.Output) (*Queue, error) {
	switch {
	case fill == nil || device == nil:
		return nil, audio.NewStatusError("NewOutput", audio.StatusInvalidParameter)
	case format.FormatID != audio.FormatLinearPCM || format.BitsPerChannel != 16:
		return nil, &audio.StatusError{
			Op:   "NewOutput",
			Code: audio.StatusInvalidParameter,
			Err:  fmt.Errorf("unsupported stream format %q (%d-bit)", format.FormatID, format.BitsPerChannel),
		}
	case format.SampleRate <= 0 || format.ChannelsPerFrame == 0:
		return nil, &audio.StatusError{
			Op:   "NewOutput",
			Code: audio.StatusInvalidParameter,
			Err:  fmt.Errorf("invalid stream format: %vHz, %d channels", format.SampleRate, format.ChannelsPerFrame),
		}
	}

	q := &Queue{
		format:     format,
		fill:       fill,
		device:     device,
		channels:   int(format.ChannelsPerFrame),
		frameBytes: int(format.ChannelsPerFrame) * 2,
		buffers:    make(map[*audio.Buffer]struct{}),
		gain:       1.0,
		engine:     newEngine(),
	}
	q.drained = sync.NewCond(&q.mu)

	go q.engine.run()

	return q, nil
}

// AllocateBuffer creates a buffer owned by the queue. packetDescCount is
// the number of packet descriptions the buffer can carry.
func (q *Queue) AllocateBuffer(size, packetDescCount uint32) (*audio.Buffer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return nil, audio.NewStatusError("AllocateBuffer", audio.StatusDisposalPending)
	}
	if size == 0 {
		return nil, audio.NewStatusError("AllocateBuffer", audio.StatusInvalidParameter)
	}

	buf := &audio.Buffer{
		Data:               make([]byte, size),
		PacketDescriptions: make([]audio.PacketDescription, packetDescCount),
	}
	q.buffers[buf] = struct{}{}
	return buf, nil
}

// Enqueue schedules buf for playback after everything already enqueued
func (q *Queue) Enqueue(buf *audio.Buffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return audio.NewStatusError("Enqueue", audio.StatusDisposalPending)
	}
	if q.resetting {
		return audio.NewStatusError("Enqueue", audio.StatusEnqueueDuringReset)
	}
	if _, ok := q.buffers[buf]; !ok {
		return audio.NewStatusError("Enqueue", audio.StatusInvalidBuffer)
	}
	if buf.Size == 0 {
		return audio.NewStatusError("Enqueue", audio.StatusBufferEmpty)
	}
	if buf.Size > buf.Capacity() || int(buf.Size)%q.frameBytes != 0 {
		return audio.NewStatusError("Enqueue", audio.StatusInvalidParameter)
	}

	q.pending = append(q.pending, buf)
	return nil
}

// Start begins or resumes playback, opening the device the first time
func (q *Queue) Start() error {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return audio.NewStatusError("Start", audio.StatusDisposalPending)
	}
	if !q.opened {
		if err := q.device.Open(int(q.format.SampleRate), q.channels, q.render); err != nil {
			q.mu.Unlock()
			return &audio.StatusError{Op: "Start", Code: audio.StatusCannotStart, Err: err}
		}
		q.opened = true
	}
	wasRunning := q.running
	q.running = true

	// Posted before the device starts so the start is reported ahead of
	// anything the device renders while starting
	var started *job
	if !wasRunning {
		q.frames = 0
		started = q.engine.post(q.notifyListeners)
	}
	q.mu.Unlock()

	if err := q.device.Start(); err != nil {
		q.mu.Lock()
		q.running = wasRunning
		q.mu.Unlock()
		if started != nil && !q.engine.withdraw(started) {
			q.engine.post(q.notifyListeners)
		}
		return &audio.StatusError{Op: "Start", Code: audio.StatusCannotStart, Err: err}
	}
	return nil
}

// Pause suspends playback without changing the run state
func (q *Queue) Pause() error {
	q.mu.Lock()
	disposed, opened := q.disposed, q.opened
	q.mu.Unlock()

	if disposed {
		return audio.NewStatusError("Pause", audio.StatusDisposalPending)
	}
	if !opened {
		return nil
	}
	if err := q.device.Pause(); err != nil {
		return &audio.StatusError{Op: "Pause", Code: audio.StatusInvalidRunState, Err: err}
	}
	return nil
}

// Stop ends playback. With immediate set it discards everything enqueued,
// hands each discarded buffer back to fill (where Enqueue fails with
// ErrEnqueueDuringReset) and returns once listeners have seen the queue
// stop. Otherwise it returns at once and the queue stops after the
// enqueued buffers have played.
func (q *Queue) Stop(immediate bool) error {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return audio.NewStatusError("Stop", audio.StatusDisposalPending)
	}

	if !immediate {
		q.stopping = true
		q.mu.Unlock()
		return nil
	}

	q.resetting = true
	inflight := q.pending
	if q.current != nil {
		inflight = append([]*audio.Buffer{q.current}, inflight...)
	}
	q.current, q.pending, q.offset = nil, nil, 0
	wasRunning := q.running
	q.running = false
	opened := q.opened
	q.drained.Broadcast()
	q.mu.Unlock()

	if opened {
		if err := q.device.Pause(); err != nil {
			log.Warnf("Failed to pause output during stop: %v", err)
		}
	}

	done := make(chan struct{})
	q.engine.post(func() {
		defer close(done)
		for _, buf := range inflight {
			q.callFill(buf)
		}

		q.mu.Lock()
		q.resetting = false
		q.stopping = false
		q.mu.Unlock()

		if wasRunning {
			q.notifyListeners()
		}
	})
	<-done

	return nil
}

// Dispose stops the queue and releases the device. Without immediate it
// first waits for enqueued audio to finish playing.
func (q *Queue) Dispose(immediate bool) error {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return nil
	}
	if !immediate && q.running {
		q.stopping = true
		for q.running {
			q.drained.Wait()
		}
	}
	q.mu.Unlock()

	if err := q.Stop(true); err != nil {
		return err
	}

	q.mu.Lock()
	q.disposed = true
	opened := q.opened
	q.listeners = nil
	q.buffers = nil
	q.mu.Unlock()

	q.engine.close()

	if opened {
		if err := q.device.Close(); err != nil {
			return &audio.StatusError{Op: "Dispose", Code: audio.StatusDisposalPending, Err: err}
		}
	}
	return nil
}

// SetVolume sets the linear playback gain in [0, 1]
func (q *Queue) SetVolume(gain float32) error {
	if gain < 0 || gain > 1 {
		return audio.NewStatusError("SetVolume", audio.StatusInvalidParameter)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.disposed {
		return audio.NewStatusError("SetVolume", audio.StatusDisposalPending)
	}
	q.gain = gain
	return nil
}

// SetMagicCookie stores codec configuration for the stream
func (q *Queue) SetMagicCookie(cookie []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return audio.NewStatusError("SetMagicCookie", audio.StatusDisposalPending)
	}
	q.cookie = append([]byte(nil), cookie...)
	return nil
}

// EnableMetering turns per-channel level metering on or off
func (q *Queue) EnableMetering(enabled bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return audio.NewStatusError("EnableMetering", audio.StatusDisposalPending)
	}
	q.metering = enabled
	if enabled && q.levels == nil {
		q.levels = make([]audio.LevelMeter, q.channels)
	}
	return nil
}

// MeterLevels copies the latest per-channel levels into dst
func (q *Queue) MeterLevels(dst []audio.LevelMeter) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.disposed:
		return audio.NewStatusError("MeterLevels", audio.StatusDisposalPending)
	case !q.metering:
		return audio.NewStatusError("MeterLevels", audio.StatusInvalidProperty)
	case !q.running:
		return audio.NewStatusError("MeterLevels", audio.StatusInvalidRunState)
	}
	copy(dst, q.levels)
	return nil
}

// CurrentTime returns the sample time of audio played since the queue
// started running
func (q *Queue) CurrentTime() (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return 0, audio.NewStatusError("CurrentTime", audio.StatusDisposalPending)
	}
	if !q.running {
		return 0, audio.NewStatusError("CurrentTime", audio.StatusInvalidRunState)
	}
	return float64(q.frames), nil
}

// IsRunning reports the run state
func (q *Queue) IsRunning() (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return false, audio.NewStatusError("IsRunning", audio.StatusDisposalPending)
	}
	return q.running, nil
}

// AddRunStateListener registers fn to be called after every run-state change
func (q *Queue) AddRunStateListener(fn audio.RunStateFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return audio.NewStatusError("AddRunStateListener", audio.StatusDisposalPending)
	}
	if fn == nil {
		return audio.NewStatusError("AddRunStateListener", audio.StatusInvalidParameter)
	}
	q.listeners = append(q.listeners, fn)
	return nil
}

// callFill runs the fill callback for buf on the engine goroutine
func (q *Queue) callFill(buf *audio.Buffer) {
	q.callbackMu.Lock()
	defer q.callbackMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Fill callback panicked: %v", r)
		}
	}()

	q.fill(buf)
}

func (q *Queue) notifyListeners() {
	q.mu.Lock()
	listeners := append([]audio.RunStateFunc(nil), q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("Run state listener panicked: %v", r)
				}
			}()
			fn()
		}()
	}
}

// finishDrain pauses the device once an async stop has played out
func (q *Queue) finishDrain() {
	q.mu.Lock()
	restarted := q.running
	q.mu.Unlock()

	if !restarted {
		if err := q.device.Pause(); err != nil {
			log.Warnf("Failed to pause output after drain: %v", err)
		}
	}
	q.notifyListeners()
}
