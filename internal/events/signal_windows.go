//go:build windows

// ABOUTME: Terminal resize source for Windows
// ABOUTME: No SIGWINCH exists, so no resize events are delivered
package events

import "os"

// notifyResize returns a nil channel, which never becomes ready
func notifyResize() (<-chan os.Signal, func()) {
	return nil, func() {}
}
