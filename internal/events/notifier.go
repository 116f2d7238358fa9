// ABOUTME: Cross-goroutine event injection for the multiplexer
// ABOUTME: Unbounded FIFO with a wake channel so senders never block
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Notifier lets code running on other goroutines (audio engine callbacks)
// inject events into a Multiplexer. Notify never blocks and never drops an
// event while the multiplexer is open.
type Notifier struct {
	mu     sync.Mutex
	queue  []Event
	wake   chan struct{}
	closed bool
}

func newNotifier() *Notifier {
	return &Notifier{wake: make(chan struct{}, 1)}
}

// Notify queues ev for the multiplexer's consumer
func (n *Notifier) Notify(ev Event) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		log.Debugf("Dropping %v: multiplexer closed", ev)
		return
	}
	n.queue = append(n.queue, ev)
	n.mu.Unlock()

	n.signal()
}

// Pending returns the number of queued events
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

func (n *Notifier) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// pop takes the oldest event. The wake token is consumed per receive, so
// it is re-raised while events remain.
func (n *Notifier) pop() (Event, bool) {
	n.mu.Lock()
	if len(n.queue) == 0 {
		n.mu.Unlock()
		return 0, false
	}
	ev := n.queue[0]
	n.queue = n.queue[1:]
	more := len(n.queue) > 0
	n.mu.Unlock()

	if more {
		n.signal()
	}
	return ev, true
}

func (n *Notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.queue = nil
}
