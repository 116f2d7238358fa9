// ABOUTME: Engine goroutine that runs queue callbacks
// ABOUTME: Executes fill calls and listeners in submission order off the device thread
package queue

import "sync"

// engine runs posted jobs one at a time in FIFO order. post never blocks,
// so the device thread can hand work over while holding the queue lock.
type engine struct {
	mu   sync.Mutex
	jobs []*job
	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newEngine() *engine {
	return &engine{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

type job struct {
	fn func()
}

func (e *engine) post(fn func()) *job {
	j := &job{fn: fn}
	e.mu.Lock()
	e.jobs = append(e.jobs, j)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return j
}

// withdraw removes j if it has not been picked up yet
func (e *engine) withdraw(j *job) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, queued := range e.jobs {
		if queued == j {
			e.jobs = append(e.jobs[:i], e.jobs[i+1:]...)
			return true
		}
	}
	return false
}

func (e *engine) next() *job {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.jobs) == 0 {
		return nil
	}
	j := e.jobs[0]
	e.jobs[0] = nil
	e.jobs = e.jobs[1:]
	return j
}

func (e *engine) run() {
	defer close(e.done)

	for {
		select {
		case <-e.quit:
			return
		case <-e.wake:
		}

		for j := e.next(); j != nil; j = e.next() {
			j.fn()
		}
	}
}

// close stops the goroutine after the job in progress; queued jobs are dropped
func (e *engine) close() {
	e.once.Do(func() { close(e.quit) })
	<-e.done
}
