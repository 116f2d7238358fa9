// ABOUTME: Audio queue package playing packet buffers on an output device
// ABOUTME: Provides Queue with fill callbacks, run-state listeners and metering
// Package queue plays 16-bit PCM packet buffers on an output device.
//
// Three goroutines are involved:
//   - the caller, which allocates and enqueues buffers and drives Start,
//     Pause and Stop
//   - the device thread, which pulls audio through the queue's render
//     function, applies gain and measures levels
//   - the queue's engine goroutine, which hands each played buffer back to
//     the fill callback and runs run-state listeners
//
// Errors are *audio.StatusError values and match the audio.Err* sentinels
// with errors.Is.
//
// Example:
//
//	q, err := queue.New(format, state.Fill, output.NewNull())
//	buf, err := q.AllocateBuffer(0x4000, 0)
//	state.Fill(buf)
//	err = q.Start()
package queue
