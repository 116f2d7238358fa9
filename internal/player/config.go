// ABOUTME: Buffer sizing for file playback
// ABOUTME: Derives buffer size and packets per buffer from the stream format
package player

import (
	"errors"
	"math"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/samber/lo"
)

const (
	// bufferDurationHint is the approximate audio duration per buffer
	bufferDurationHint = 0.5

	minBufferSizeHint uint32 = 0x4000
	maxBufferSizeHint uint32 = 0x50000

	// BufferCount is how many buffers each queue cycles through
	BufferCount = 3
)

// ErrInvalidPacketSize is returned for formats without a usable packet size bound
var ErrInvalidPacketSize = errors.New("invalid packet size upper bound")

// BufferConfiguration describes how a file is read into queue buffers
type BufferConfiguration struct {
	BufferSize       uint32
	PacketsPerBuffer uint32
	VBR              bool
}

// NewBufferConfiguration sizes buffers to hold about half a second of
// audio within fixed bounds. When packet durations are unknown it falls back
// to the upper bound. A buffer always holds at least one packet.
func NewBufferConfiguration(format audio.StreamDescription, maxPacketSize uint32) (BufferConfiguration, error) {
	if maxPacketSize == 0 {
		return BufferConfiguration{}, ErrInvalidPacketSize
	}

	var size uint32
	if format.FramesPerPacket != 0 {
		frames := format.SampleRate * bufferDurationHint
		packets := math.Ceil(frames / float64(format.FramesPerPacket))
		bytes := uint64(packets) * uint64(maxPacketSize)
		size = uint32(lo.Clamp(bytes, uint64(minBufferSizeHint), uint64(maxBufferSizeHint)))
	} else {
		size = max(maxPacketSize, maxBufferSizeHint)
	}
	size = max(size, maxPacketSize)

	return BufferConfiguration{
		BufferSize:       size,
		PacketsPerBuffer: size / maxPacketSize,
		VBR:              format.VariableBitRate(),
	}, nil
}

// packetDescriptionCount is the description capacity each buffer needs
func (c BufferConfiguration) packetDescriptionCount() uint32 {
	if c.VBR {
		return c.PacketsPerBuffer
	}
	return 0
}
