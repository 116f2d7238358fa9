// ABOUTME: Audio type definitions
// ABOUTME: Defines stream descriptions, packet buffers and sample conversions
package audio

import "time"

// Linear PCM format identifier. Decoded files always describe their
// packets in this format.
const FormatLinearPCM = "lpcm"

// StreamDescription describes how a stream is packetised
type StreamDescription struct {
	SampleRate       float64
	FormatID         string
	BytesPerPacket   uint32 // 0 when packets vary in size
	FramesPerPacket  uint32 // 0 when packets vary in duration
	BytesPerFrame    uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
}

// VariableBitRate reports whether packet sizes or durations vary
func (d StreamDescription) VariableBitRate() bool {
	return d.BytesPerPacket == 0 || d.FramesPerPacket == 0
}

// FramesToDuration converts a frame count at the stream's sample rate
func (d StreamDescription) FramesToDuration(frames float64) time.Duration {
	if d.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames / d.SampleRate * float64(time.Second))
}

// PacketDescription locates one packet inside a buffer
type PacketDescription struct {
	StartOffset            int64
	VariableFramesInPacket uint32
	DataByteSize           uint32
}

// Buffer is a fixed-capacity block of packet data owned by a queue.
// Data holds the capacity, Size the number of valid bytes.
type Buffer struct {
	Data                   []byte
	Size                   uint32
	PacketDescriptions     []PacketDescription
	PacketDescriptionCount uint32
}

// Capacity returns the buffer's byte capacity
func (b *Buffer) Capacity() uint32 {
	return uint32(len(b.Data))
}

// Reset marks the buffer empty without releasing its storage
func (b *Buffer) Reset() {
	b.Size = 0
	b.PacketDescriptionCount = 0
}

// LevelMeter holds linear (0..1) power readings for one channel
type LevelMeter struct {
	Average float32
	Peak    float32
}

// FillFunc is invoked by a queue whenever a buffer needs more data
type FillFunc func(buf *Buffer)

// RunStateFunc is invoked by a queue whenever its running state changes
type RunStateFunc func()

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// ScaleToInt16 rescales a sample of the given bit depth to 16 bits
func ScaleToInt16(sample int32, bitsPerSample int) int16 {
	switch {
	case bitsPerSample > 16:
		return int16(sample >> (bitsPerSample - 16))
	case bitsPerSample < 16:
		return int16(sample << (16 - bitsPerSample))
	default:
		return int16(sample)
	}
}
