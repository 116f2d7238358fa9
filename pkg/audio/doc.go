// ABOUTME: Audio fundamentals package providing core engine types
// ABOUTME: Defines stream descriptions, packet buffers and status errors
// Package audio provides the fundamental types shared by the playback engine.
//
// This package defines:
//   - StreamDescription: how a stream is packetised (rate, channels, packet sizes)
//   - Buffer / PacketDescription: fixed-capacity packet blocks handed between
//     a file reader and a queue
//   - LevelMeter: per-channel average/peak readings
//   - Status / StatusError: opaque engine status codes tagged with the
//     operation that produced them
//
// Example:
//
//	if errors.Is(err, audio.ErrInvalidRunState) {
//	    // the queue is starting or stopping, try again later
//	}
package audio
