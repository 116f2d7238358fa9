// ABOUTME: Keyboard event source
// ABOUTME: Reads raw terminal bytes on a goroutine and maps them to events
package events

import "io"

// keyBindings maps raw input bytes to events; anything else is ignored
var keyBindings = map[byte]Event{
	'n': NextTrackKeyPressed,
	'q': ExitKeyPressed,
	'p': PauseKeyPressed,
	']': VolumeUpKeyPressed,
	'[': VolumeDownKeyPressed,
}

// keyResult carries either a key event or the read error that ended the
// reader. Both travel on one channel so the error is seen after every key
// read before it.
type keyResult struct {
	event Event
	err   error
}

// readKeys blocks in Read until input arrives, so no polling happens. It
// exits on the first read error, or on done once its pending send is
// abandoned; a Read already in progress cannot be interrupted.
func readKeys(r io.Reader, out chan<- keyResult, done <-chan struct{}) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			ev, ok := keyBindings[b]
			if !ok {
				continue
			}
			select {
			case out <- keyResult{event: ev}:
			case <-done:
				return
			}
		}

		if err != nil {
			select {
			case out <- keyResult{err: err}:
			case <-done:
			}
			return
		}
	}
}
