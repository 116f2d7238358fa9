// ABOUTME: Event multiplexer for the playback control loop
// ABOUTME: Fans keyboard, UI timer, resize and engine notifications into one stream
package events

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	// ErrEventSource wraps a failure of an underlying event source. It
	// ends the event stream.
	ErrEventSource = errors.New("event source failed")

	// ErrClosed is returned by Next after Close
	ErrClosed = errors.New("multiplexer closed")
)

// Multiplexer merges every event source into one blocking stream with a
// single consumer. Next, EnableUITimer, DisableUITimer and Close must be
// called from the consumer's goroutine; only the Notifier is shared.
type Multiplexer struct {
	keys     chan keyResult
	resize   <-chan os.Signal
	notifier *Notifier

	timer  *time.Timer
	timerC <-chan time.Time

	err        error
	done       chan struct{}
	closeOnce  sync.Once
	stopResize func()
}

// New starts reading keys from input (nil disables the keyboard) and
// subscribes to terminal resizes
func New(input io.Reader) (*Multiplexer, error) {
	m := &Multiplexer{
		keys:     make(chan keyResult),
		notifier: newNotifier(),
		done:     make(chan struct{}),
	}
	m.resize, m.stopResize = notifyResize()

	if input != nil {
		go readKeys(input, m.keys, m.done)
	}

	return m, nil
}

// Notifier returns the handle other goroutines use to inject events
func (m *Multiplexer) Notifier() *Notifier {
	return m.notifier
}

// Next blocks until any source has an event. The first ready source wins.
// A failed event source is reported on this and every later call.
func (m *Multiplexer) Next() (Event, error) {
	if m.err != nil {
		return 0, m.err
	}
	select {
	case <-m.done:
		return 0, ErrClosed
	default:
	}

	for {
		select {
		case <-m.done:
			return 0, ErrClosed

		case res := <-m.keys:
			if res.err != nil {
				m.err = fmt.Errorf("%w: keyboard: %w", ErrEventSource, res.err)
				return 0, m.err
			}
			return res.event, nil

		case <-m.timerC:
			m.timerC = nil
			return UITick, nil

		case <-m.resize:
			return TerminalResized, nil

		case <-m.notifier.wake:
			if ev, ok := m.notifier.pop(); ok {
				return ev, nil
			}
		}
	}
}

// EnableUITimer arms a one-shot timer that delivers a single UITick after
// d. Calling it again re-arms the timer.
func (m *Multiplexer) EnableUITimer(d time.Duration) {
	if m.timer == nil {
		m.timer = time.NewTimer(d)
	} else {
		m.timer.Reset(d)
	}
	m.timerC = m.timer.C
}

// DisableUITimer disarms the timer; no UITick is delivered until it is
// enabled again. Safe to call when nothing is armed.
func (m *Multiplexer) DisableUITimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timerC = nil
}

// Close releases the event sources. Notifications sent afterwards are
// dropped.
func (m *Multiplexer) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.DisableUITimer()
		m.stopResize()
		m.notifier.close()
	})
	return nil
}
