// ABOUTME: Test doubles for the playback engine
// ABOUTME: In-memory packet file, recording queue and event notifier
package player

import (
	"errors"
	"sync"
	"time"

	"github.com/Resonate-Protocol/boombox/internal/events"
	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

// callLog records the order of calls across fakes
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type readCall struct {
	from     int64
	count    uint32
	withDesc bool
}

// fakeFile serves fixed packets
type fakeFile struct {
	mu       sync.Mutex
	format   audio.StreamDescription
	packets  [][]byte
	metadata map[string]string
	cookie   []byte
	readErr  error
	reads    []readCall
	log      *callLog
	closed   bool
}

func newFakeFile(packetCount, packetSize int) *fakeFile {
	packets := make([][]byte, packetCount)
	for i := range packets {
		packets[i] = make([]byte, packetSize)
		for j := range packets[i] {
			packets[i][j] = byte(i + 1)
		}
	}
	return &fakeFile{
		format: audio.StreamDescription{
			SampleRate:       8000,
			FormatID:         audio.FormatLinearPCM,
			BytesPerPacket:   uint32(packetSize),
			FramesPerPacket:  uint32(packetSize / 4),
			BytesPerFrame:    4,
			ChannelsPerFrame: 2,
			BitsPerChannel:   16,
		},
		packets:  packets,
		metadata: map[string]string{"title": "Test Tone"},
	}
}

func (f *fakeFile) Format() (audio.StreamDescription, error) { return f.format, nil }

func (f *fakeFile) PacketSizeUpperBound() (uint32, error) {
	if len(f.packets) == 0 {
		return 4, nil
	}
	return uint32(len(f.packets[0])), nil
}

func (f *fakeFile) EstimatedDuration() (time.Duration, error) { return 3 * time.Second, nil }

func (f *fakeFile) Metadata() (map[string]string, error) { return f.metadata, nil }

func (f *fakeFile) MagicCookie() ([]byte, error) { return f.cookie, nil }

func (f *fakeFile) ReadPackets(from int64, count uint32, buf *audio.Buffer, withDesc bool) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads = append(f.reads, readCall{from: from, count: count, withDesc: withDesc})
	if f.readErr != nil {
		return 0, f.readErr
	}

	buf.Reset()
	var n uint32
	for i := from; i < int64(len(f.packets)) && n < count; i++ {
		p := f.packets[i]
		if buf.Size+uint32(len(p)) > buf.Capacity() {
			break
		}
		if withDesc {
			buf.PacketDescriptions[n] = audio.PacketDescription{
				StartOffset:  int64(buf.Size),
				DataByteSize: uint32(len(p)),
			}
		}
		copy(buf.Data[buf.Size:], p)
		buf.Size += uint32(len(p))
		n++
	}
	if withDesc {
		buf.PacketDescriptionCount = n
	}
	return n, nil
}

func (f *fakeFile) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reads)
}

func (f *fakeFile) Close() error {
	f.log.add("file.Close")
	f.closed = true
	return nil
}

// fakeQueue records what the controller and pump ask of it. Start and
// Stop(true) run listeners synchronously unless deferred is set, in which
// case runDeferred calls them later the way the engine goroutine would.
type fakeQueue struct {
	mu         sync.Mutex
	log        *callLog
	enqueued   []*audio.Buffer
	enqueueErr error
	stops      []bool
	stopErr    error
	startErr   error
	deferred   bool
	owed       int
	running    bool
	runErr     error
	listeners  []audio.RunStateFunc
	allocated  []*audio.Buffer
	allocErr   error
	gain       float32
	metering   bool
	levels     []audio.LevelMeter
	sampleTime float64
	timeErr    error
	cookie     []byte
	disposed   bool
}

func (q *fakeQueue) AllocateBuffer(size, descCount uint32) (*audio.Buffer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.allocErr != nil {
		return nil, q.allocErr
	}
	buf := &audio.Buffer{
		Data:               make([]byte, size),
		PacketDescriptions: make([]audio.PacketDescription, descCount),
	}
	q.allocated = append(q.allocated, buf)
	return buf, nil
}

func (q *fakeQueue) Enqueue(buf *audio.Buffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, buf)
	return nil
}

func (q *fakeQueue) Start() error {
	q.log.add("queue.Start")
	if q.startErr != nil {
		return q.startErr
	}
	q.setRunning(true)
	return nil
}

func (q *fakeQueue) notifyListeners() {
	q.mu.Lock()
	listeners := append([]audio.RunStateFunc(nil), q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (q *fakeQueue) Pause() error {
	q.log.add("queue.Pause")
	return nil
}

func (q *fakeQueue) Stop(immediate bool) error {
	q.mu.Lock()
	q.stops = append(q.stops, immediate)
	err := q.stopErr
	q.mu.Unlock()

	if immediate {
		q.setRunning(false)
	}
	return err
}

func (q *fakeQueue) setRunning(running bool) {
	q.mu.Lock()
	changed := q.running != running
	q.running = running
	deferred := q.deferred
	if changed && deferred {
		q.owed++
	}
	q.mu.Unlock()

	if changed && !deferred {
		q.notifyListeners()
	}
}

func (q *fakeQueue) runDeferred() {
	q.mu.Lock()
	owed := q.owed
	q.owed = 0
	q.mu.Unlock()

	for i := 0; i < owed; i++ {
		q.notifyListeners()
	}
}

func (q *fakeQueue) asyncStops() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, immediate := range q.stops {
		if !immediate {
			n++
		}
	}
	return n
}

func (q *fakeQueue) Dispose(immediate bool) error {
	q.log.add("queue.Dispose")
	q.mu.Lock()
	defer q.mu.Unlock()
	q.disposed = true
	return nil
}

func (q *fakeQueue) SetVolume(gain float32) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gain = gain
	return nil
}

func (q *fakeQueue) SetMagicCookie(cookie []byte) error {
	q.cookie = cookie
	return nil
}

func (q *fakeQueue) EnableMetering(enabled bool) error {
	q.log.add("queue.EnableMetering")
	q.metering = enabled
	return nil
}

func (q *fakeQueue) MeterLevels(dst []audio.LevelMeter) error {
	if !q.metering {
		return audio.NewStatusError("MeterLevels", audio.StatusInvalidProperty)
	}
	copy(dst, q.levels)
	return nil
}

func (q *fakeQueue) CurrentTime() (float64, error) {
	return q.sampleTime, q.timeErr
}

func (q *fakeQueue) IsRunning() (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running, q.runErr
}

func (q *fakeQueue) AddRunStateListener(fn audio.RunStateFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
	return nil
}

// fakeEngine hands out a prepared file and queue
type fakeEngine struct {
	file     *fakeFile
	queue    *fakeQueue
	openErr  error
	queueErr error
	opened   []string
	fill     audio.FillFunc
}

func (e *fakeEngine) OpenFile(path string) (File, error) {
	e.opened = append(e.opened, path)
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.file, nil
}

func (e *fakeEngine) NewQueue(format audio.StreamDescription, fill audio.FillFunc) (Queue, error) {
	if e.queueErr != nil {
		return nil, e.queueErr
	}
	e.fill = fill
	return e.queue, nil
}

// recordingNotifier collects notified events
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Notify(ev events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) list() []events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]events.Event(nil), n.events...)
}

var errDisk = errors.New("disk on fire")
