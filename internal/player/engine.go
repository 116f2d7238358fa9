// ABOUTME: Audio engine capabilities used by playback
// ABOUTME: Interfaces over packet files and playback queues
package player

import (
	"time"

	"github.com/Resonate-Protocol/boombox/internal/events"
	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

// File is an audio file read as numbered packets
type File interface {
	Format() (audio.StreamDescription, error)
	PacketSizeUpperBound() (uint32, error)
	EstimatedDuration() (time.Duration, error)
	Metadata() (map[string]string, error)
	MagicCookie() ([]byte, error)
	ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error)
	Close() error
}

// Queue plays buffers filled from a File and reports run-state changes
type Queue interface {
	AllocateBuffer(size, packetDescCount uint32) (*audio.Buffer, error)
	Enqueue(buf *audio.Buffer) error
	Start() error
	Pause() error
	Stop(immediate bool) error
	Dispose(immediate bool) error
	SetVolume(gain float32) error
	SetMagicCookie(cookie []byte) error
	EnableMetering(enabled bool) error
	MeterLevels(dst []audio.LevelMeter) error
	CurrentTime() (float64, error)
	IsRunning() (bool, error)
	AddRunStateListener(fn audio.RunStateFunc) error
}

// Engine opens files and creates queues to play them
type Engine interface {
	OpenFile(path string) (File, error)
	NewQueue(format audio.StreamDescription, fill audio.FillFunc) (Queue, error)
}

// Notifier delivers events to the control loop from any goroutine
type Notifier interface {
	Notify(ev events.Event)
}
