// ABOUTME: Silent clocked audio output
// ABOUTME: Pulls audio at real-time pace without a sound device
package output

import (
	"fmt"
	"sync"
	"time"
)

// nullPeriod is how much audio the null device pulls per tick
const nullPeriod = 10 * time.Millisecond

// Null discards audio while pulling it at the stream's real-time rate.
// Useful on machines without a sound device.
type Null struct {
	mu      sync.Mutex
	render  RenderFunc
	buf     []byte
	stop    chan struct{}
	done    chan struct{}
	opened  bool
	started bool
}

// NewNull creates a new silent output
func NewNull() Output {
	return &Null{}
}

// Open sizes the per-tick buffer for the format
func (n *Null) Open(sampleRate, channels int, render RenderFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid format: %dHz, %d channels", sampleRate, channels)
	}

	frames := int(int64(sampleRate) * int64(nullPeriod) / int64(time.Second))
	n.buf = make([]byte, max(frames, 1)*channels*2)
	n.render = render
	n.opened = true
	return nil
}

// Start begins pulling audio on a background goroutine
func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.opened {
		return fmt.Errorf("output not initialized")
	}
	if n.started {
		return nil
	}

	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	n.started = true
	go n.run(n.stop, n.done)
	return nil
}

func (n *Null) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(nullPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.render(n.buf)
		}
	}
}

// Pause stops the pulling goroutine and waits for it to exit
func (n *Null) Pause() error {
	n.mu.Lock()
	if !n.started {
		n.mu.Unlock()
		return nil
	}
	n.started = false
	stop, done := n.stop, n.done
	n.mu.Unlock()

	close(stop)
	<-done
	return nil
}

// Close stops the device
func (n *Null) Close() error {
	if err := n.Pause(); err != nil {
		return err
	}

	n.mu.Lock()
	n.opened = false
	n.mu.Unlock()
	return nil
}
