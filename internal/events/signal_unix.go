//go:build !windows

// ABOUTME: Terminal resize source for Unix
// ABOUTME: Delivers SIGWINCH as resize notifications
package events

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyResize subscribes to terminal window size changes
func notifyResize() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	return ch, func() { signal.Stop(ch) }
}
