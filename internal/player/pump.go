// ABOUTME: Buffer pump that refills queue buffers from the open file
// ABOUTME: Runs on the queue's callback goroutine and latches at end of file
package player

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	log "github.com/sirupsen/logrus"
)

// packetReader is the part of File the pump reads through
type packetReader interface {
	ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error)
}

// bufferSink is the part of Queue the pump feeds
type bufferSink interface {
	Enqueue(buf *audio.Buffer) error
	Stop(immediate bool) error
}

// packetStrategy reads the next packets into a buffer
type packetStrategy interface {
	read(file packetReader, from int64, count uint32, buf *audio.Buffer) (uint32, error)
}

// cbrReader reads constant-size packets without descriptions
type cbrReader struct{}

func (cbrReader) read(file packetReader, from int64, count uint32, buf *audio.Buffer) (uint32, error) {
	packets, err := file.ReadPackets(from, count, buf, false)
	buf.PacketDescriptionCount = 0
	return packets, err
}

// vbrReader reads variable packets along with their descriptions
type vbrReader struct{}

func (vbrReader) read(file packetReader, from int64, count uint32, buf *audio.Buffer) (uint32, error) {
	count = min(count, uint32(len(buf.PacketDescriptions)))
	return file.ReadPackets(from, count, buf, true)
}

// PumpStats tracks buffer pump activity
type PumpStats struct {
	Reads    int64
	Enqueued int64
	Packets  int64
	Ignored  int64
}

// PlaybackState is the buffer pump for one file. Fill is called by the
// foreground goroutine while pre-buffering and afterwards only by the queue's
// callback goroutine. The two never overlap: pre-buffering returns before the
// queue is started, and the queue only calls Fill once started.
type PlaybackState struct {
	file             packetReader
	queue            bufferSink
	packetsPerBuffer uint32
	strategy         packetStrategy

	cursor   atomic.Int64
	finished atomic.Bool

	errMu sync.Mutex
	err   error

	reads    atomic.Int64
	enqueued atomic.Int64
	packets  atomic.Int64
	ignored  atomic.Int64
}

func newPlaybackState(file packetReader, cfg BufferConfiguration) *PlaybackState {
	s := &PlaybackState{
		file:             file,
		packetsPerBuffer: cfg.PacketsPerBuffer,
		strategy:         cbrReader{},
	}
	if cfg.VBR {
		s.strategy = vbrReader{}
	}
	return s
}

// attach sets the queue that filled buffers are submitted to
func (s *PlaybackState) attach(queue bufferSink) {
	s.queue = queue
}

// Fill reads the next packets into buf and submits it. Once the file is
// exhausted or submission fails, every later call returns immediately.
func (s *PlaybackState) Fill(buf *audio.Buffer) {
	if s.finished.Load() {
		s.ignored.Add(1)
		return
	}

	cursor := s.cursor.Load()
	s.reads.Add(1)
	packets, err := s.strategy.read(s.file, cursor, s.packetsPerBuffer, buf)
	if err != nil {
		s.finished.Store(true)
		s.fail(fmt.Errorf("failed to read packets at %d: %w", cursor, err))
		s.requestStop()
		return
	}

	if packets == 0 {
		s.finished.Store(true)
		log.Debugf("End of file after %d packets", cursor)
		s.requestStop()
		return
	}

	if err := s.queue.Enqueue(buf); err != nil {
		s.finished.Store(true)
		if errors.Is(err, audio.ErrEnqueueDuringReset) {
			log.Debugf("Queue reset at packet %d", cursor)
			return
		}
		s.fail(fmt.Errorf("failed to enqueue buffer at packet %d: %w", cursor, err))
		s.requestStop()
		return
	}

	s.cursor.Add(int64(packets))
	s.enqueued.Add(1)
	s.packets.Add(int64(packets))
}

// Prebuffer fills each buffer once before playback starts. A short file
// may run out before every buffer is used.
func (s *PlaybackState) Prebuffer(buffers []*audio.Buffer) {
	for _, buf := range buffers {
		s.Fill(buf)
	}
}

// requestStop lets the queue play out what it already has, then stop
func (s *PlaybackState) requestStop() {
	if err := s.queue.Stop(false); err != nil {
		s.fail(fmt.Errorf("failed to stop playback: %w", err))
	}
}

// fail records the first reportable failure
func (s *PlaybackState) fail(err error) {
	log.Errorf("Buffer pump: %v", err)

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// release latches the pump and drops its references once the queue is gone
func (s *PlaybackState) release() {
	s.finished.Store(true)
	s.file = nil
	s.queue = nil
}

// Finished reports whether the pump has stopped reading
func (s *PlaybackState) Finished() bool {
	return s.finished.Load()
}

// Cursor returns the next packet to read
func (s *PlaybackState) Cursor() int64 {
	return s.cursor.Load()
}

// Err returns the first reportable failure, if any
func (s *PlaybackState) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Stats returns a snapshot of pump activity
func (s *PlaybackState) Stats() PumpStats {
	return PumpStats{
		Reads:    s.reads.Load(),
		Enqueued: s.enqueued.Load(),
		Packets:  s.packets.Load(),
		Ignored:  s.ignored.Load(),
	}
}
