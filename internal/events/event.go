// ABOUTME: Playback event definitions
// ABOUTME: Closed set of events delivered by the multiplexer
package events

import "fmt"

// Event is one input to the playback control loop
type Event int

const (
	_ Event = iota
	PauseKeyPressed
	VolumeUpKeyPressed
	VolumeDownKeyPressed
	NextTrackKeyPressed
	ExitKeyPressed
	PlaybackStarted
	PlaybackFinished
	UITick
	TerminalResized
)

var eventNames = map[Event]string{
	PauseKeyPressed:      "PauseKeyPressed",
	VolumeUpKeyPressed:   "VolumeUpKeyPressed",
	VolumeDownKeyPressed: "VolumeDownKeyPressed",
	NextTrackKeyPressed:  "NextTrackKeyPressed",
	ExitKeyPressed:       "ExitKeyPressed",
	PlaybackStarted:      "PlaybackStarted",
	PlaybackFinished:     "PlaybackFinished",
	UITick:               "UITick",
	TerminalResized:      "TerminalResized",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(%d)", int(e))
}
