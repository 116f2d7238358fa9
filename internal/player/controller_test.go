// ABOUTME: Tests for the playback controller
// ABOUTME: Tests setup, transport calls, volume checks and teardown order
package player

import (
	"errors"
	"testing"
	"time"

	"github.com/Resonate-Protocol/boombox/internal/events"
	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

func newTestController(t *testing.T, file *fakeFile) (*Controller, *fakeEngine, *recordingNotifier) {
	t.Helper()
	engine := &fakeEngine{file: file, queue: &fakeQueue{log: file.log}}
	notifier := &recordingNotifier{}

	c, err := NewController(engine, "song.wav", notifier)
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return c, engine, notifier
}

func TestNewControllerRejectsEmptyPath(t *testing.T) {
	engine := &fakeEngine{file: newFakeFile(1, 4), queue: &fakeQueue{}}

	_, err := NewController(engine, "", &recordingNotifier{})
	if !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	if len(engine.opened) != 0 {
		t.Error("file opened for an empty path")
	}
}

func TestNewControllerPrebuffers(t *testing.T) {
	file := newFakeFile(3, 4)
	c, engine, _ := newTestController(t, file)
	queue := engine.queue

	if len(queue.allocated) != BufferCount {
		t.Fatalf("expected %d buffers, got %d", BufferCount, len(queue.allocated))
	}
	if got := queue.allocated[0].Capacity(); got != c.config.BufferSize {
		t.Errorf("expected %d-byte buffers, got %d", c.config.BufferSize, got)
	}
	if len(queue.enqueued) != 1 {
		t.Errorf("expected one buffer with audio, got %d", len(queue.enqueued))
	}
	if queue.asyncStops() != 1 {
		t.Errorf("expected the short file to request one async stop, got %d", queue.asyncStops())
	}
	if len(queue.listeners) != 1 {
		t.Errorf("expected a run-state listener, got %d", len(queue.listeners))
	}
	if engine.fill == nil {
		t.Error("expected the pump's fill to be registered")
	}
	if c.Metadata()["title"] != "Test Tone" {
		t.Errorf("unexpected metadata: %v", c.Metadata())
	}
	if c.EstimatedDuration() != 3*time.Second {
		t.Errorf("unexpected duration: %v", c.EstimatedDuration())
	}
}

func TestNewControllerSetsMagicCookie(t *testing.T) {
	file := newFakeFile(3, 4)
	file.cookie = []byte{0xca, 0xfe}
	_, engine, _ := newTestController(t, file)

	if string(engine.queue.cookie) != string(file.cookie) {
		t.Errorf("expected cookie to reach the queue, got %x", engine.queue.cookie)
	}
}

func TestNewControllerOpenFailure(t *testing.T) {
	engine := &fakeEngine{openErr: errDisk}

	_, err := NewController(engine, "missing.mp3", &recordingNotifier{})
	if !errors.Is(err, errDisk) {
		t.Errorf("expected open error to be wrapped, got %v", err)
	}
}

func TestNewControllerQueueFailureClosesFile(t *testing.T) {
	file := newFakeFile(3, 4)
	engine := &fakeEngine{file: file, queueErr: audio.NewStatusError("NewOutput", audio.StatusInvalidParameter)}

	_, err := NewController(engine, "song.wav", &recordingNotifier{})
	if !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected queue error, got %v", err)
	}
	if !file.closed {
		t.Error("expected file to be closed after a failed setup")
	}
}

func TestNewControllerAllocationFailureReleasesQueue(t *testing.T) {
	file := newFakeFile(3, 4)
	queue := &fakeQueue{allocErr: audio.NewStatusError("AllocateBuffer", audio.StatusInvalidParameter)}
	engine := &fakeEngine{file: file, queue: queue}

	_, err := NewController(engine, "song.wav", &recordingNotifier{})
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if !queue.disposed {
		t.Error("expected queue to be disposed")
	}
	if !file.closed {
		t.Error("expected file to be closed")
	}
}

func TestControllerStartEnablesMetering(t *testing.T) {
	file := newFakeFile(3, 4)
	file.log = &callLog{}
	c, _, notifier := newTestController(t, file)

	if err := c.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	calls := file.log.list()
	if len(calls) < 2 || calls[0] != "queue.EnableMetering" || calls[1] != "queue.Start" {
		t.Errorf("expected metering before start, got %v", calls)
	}
	if got := notifier.list(); len(got) != 1 || got[0] != events.PlaybackStarted {
		t.Errorf("expected PlaybackStarted, got %v", got)
	}
}

func TestControllerStopFinishesOnce(t *testing.T) {
	c, engine, notifier := newTestController(t, newFakeFile(30, 4))
	c.Start()

	if err := c.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	c.Stop()

	if stops := engine.queue.stops; len(stops) == 0 || !stops[len(stops)-1] {
		t.Errorf("expected a synchronous stop, got %v", stops)
	}
	got := notifier.list()
	if len(got) != 2 || got[1] != events.PlaybackFinished {
		t.Errorf("expected one PlaybackFinished, got %v", got)
	}
}

func TestControllerStopBeforeListenerSeesStart(t *testing.T) {
	c, engine, notifier := newTestController(t, newFakeFile(30, 4))
	engine.queue.deferred = true

	if err := c.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	// Both listener calls read the stopped queue
	engine.queue.runDeferred()

	expectEvents(t, notifier.list(), events.PlaybackStarted, events.PlaybackFinished)
}

func TestControllerStartFailureIgnoresRunState(t *testing.T) {
	c, engine, notifier := newTestController(t, newFakeFile(30, 4))
	engine.queue.startErr = audio.NewStatusError("Start", audio.StatusCannotStart)

	if err := c.Start(); !errors.Is(err, audio.ErrCannotStart) {
		t.Fatalf("expected ErrCannotStart, got %v", err)
	}
	engine.queue.notifyListeners()

	expectEvents(t, notifier.list())
}

func TestControllerSetVolume(t *testing.T) {
	c, engine, _ := newTestController(t, newFakeFile(3, 4))

	if err := c.SetVolume(NewPlaybackVolume(8)); err != nil {
		t.Fatalf("set volume failed: %v", err)
	}
	if engine.queue.gain != 0.5 {
		t.Errorf("expected gain 0.5, got %v", engine.queue.gain)
	}
}

func TestControllerSetVolumePanicsOutOfRange(t *testing.T) {
	c, _, _ := newTestController(t, newFakeFile(3, 4))

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for gain above 1")
		}
	}()
	c.SetVolume(PlaybackVolume{step: MaxVolume + 1})
}

func TestControllerMeterLevel(t *testing.T) {
	c, engine, _ := newTestController(t, newFakeFile(3, 4))
	meter := c.NewMeterState()

	if err := c.MeterLevel(&meter); !errors.Is(err, audio.ErrInvalidProperty) {
		t.Errorf("expected failure before metering is enabled, got %v", err)
	}

	engine.queue.levels = []audio.LevelMeter{{Average: 0.25, Peak: 0.5}, {Average: 0.75, Peak: 1}}
	c.Start()
	if err := c.MeterLevel(&meter); err != nil {
		t.Fatalf("meter read failed: %v", err)
	}
	if got := meter.Stereo(); got != [2]float32{0.25, 0.75} {
		t.Errorf("unexpected levels: %v", got)
	}
}

func TestControllerPlaybackTime(t *testing.T) {
	c, engine, _ := newTestController(t, newFakeFile(3, 4))

	engine.queue.timeErr = audio.NewStatusError("CurrentTime", audio.StatusInvalidRunState)
	if c.PlaybackTime().IsPresent() {
		t.Error("expected no playback time while not running")
	}

	engine.queue.timeErr = audio.NewStatusError("CurrentTime", audio.StatusDisposalPending)
	if c.PlaybackTime().IsPresent() {
		t.Error("expected no playback time on other failures")
	}

	engine.queue.timeErr = nil
	engine.queue.sampleTime = 12000
	got, ok := c.PlaybackTime().Get()
	if !ok || got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v (present=%v)", got, ok)
	}
}

func TestControllerCloseOrder(t *testing.T) {
	file := newFakeFile(3, 4)
	file.log = &callLog{}
	c, _, _ := newTestController(t, file)

	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	calls := file.log.list()
	if len(calls) != 2 || calls[0] != "queue.Dispose" || calls[1] != "file.Close" {
		t.Errorf("expected dispose before file close, got %v", calls)
	}
	if !c.state.Finished() {
		t.Error("expected pump to be released")
	}
}
