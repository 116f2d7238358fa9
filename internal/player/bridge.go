// ABOUTME: Run-state bridge from the queue to the event stream
// ABOUTME: Turns queue run-state changes into one started and one finished event
package player

import (
	"sync/atomic"

	"github.com/Resonate-Protocol/boombox/internal/events"
	log "github.com/sirupsen/logrus"
)

// runStateReader is the part of Queue the bridge observes
type runStateReader interface {
	IsRunning() (bool, error)
}

// RunStateBridge is registered as a queue run-state listener. Once armed by
// a successful start it emits PlaybackStarted and then PlaybackFinished,
// each exactly once per session.
//
// The run state is read when the listener runs, not when it changed, so a
// start followed quickly by a stop can be seen as two stopped readings.
// A stop after arming therefore reports the start as well.
type RunStateBridge struct {
	queue    runStateReader
	notifier Notifier

	armed    atomic.Bool
	started  atomic.Bool
	finished atomic.Bool
}

func newRunStateBridge(queue runStateReader, notifier Notifier) *RunStateBridge {
	return &RunStateBridge{queue: queue, notifier: notifier}
}

// arm marks the session as started. Until then stopped readings are
// ignored.
func (b *RunStateBridge) arm() {
	b.armed.Store(true)
}

// disarm undoes arm after a failed start
func (b *RunStateBridge) disarm() {
	b.armed.Store(false)
}

// Changed is the listener callback. It runs on the queue's callback
// goroutine and never panics out of it.
func (b *RunStateBridge) Changed() {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Run state listener panicked: %v", r)
		}
	}()

	if !b.armed.Load() {
		log.Debug("Ignoring run state change before playback started")
		return
	}

	running, err := b.queue.IsRunning()
	if err != nil {
		log.Errorf("Failed to read queue run state: %v", err)
		return
	}

	if running {
		b.notifyStarted()
		return
	}
	if b.finished.CompareAndSwap(false, true) {
		b.notifyStarted()
		b.notifier.Notify(events.PlaybackFinished)
	}
}

func (b *RunStateBridge) notifyStarted() {
	if b.started.CompareAndSwap(false, true) {
		b.notifier.Notify(events.PlaybackStarted)
	}
}
