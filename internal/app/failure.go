// ABOUTME: Failure type reported by the player application
// ABOUTME: Names the failing subsystem and what the player was doing at the time
package app

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/boombox/internal/events"
)

// Subsystem identifies where a failure came from
type Subsystem string

const (
	SubsystemPlayback  Subsystem = "playback"
	SubsystemUI        Subsystem = "ui"
	SubsystemEventLoop Subsystem = "event loop"
)

const (
	contextSetup    = "getting ready for playback"
	contextShutdown = "shutting down"
)

// Failure wraps an error with the subsystem and activity it interrupted
type Failure struct {
	Subsystem Subsystem
	Context   string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure while %s: %v", f.Subsystem, f.Context, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// displayError marks a failure to draw so it is reported as a UI failure
type displayError struct {
	err error
}

func (e *displayError) Error() string { return e.err.Error() }
func (e *displayError) Unwrap() error { return e.err }

// newFailure attributes err to subsystem unless its cause says otherwise
func newFailure(subsystem Subsystem, context string, err error) error {
	if err == nil {
		return nil
	}
	var display *displayError
	switch {
	case errors.Is(err, events.ErrEventSource):
		subsystem = SubsystemEventLoop
	case errors.As(err, &display):
		subsystem = SubsystemUI
	}
	return &Failure{Subsystem: subsystem, Context: context, Err: err}
}

func playingBack(path string) string {
	return fmt.Sprintf("playing back file '%s'", path)
}
