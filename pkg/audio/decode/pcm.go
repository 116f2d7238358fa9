// ABOUTME: PCM packet writer shared by all packet readers
// ABOUTME: Packs decoded 16-bit PCM packets and their descriptions into buffers
package decode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

// bytesPerSample is fixed: every reader emits 16-bit PCM
const bytesPerSample = 2

// packetWriter appends whole packets to a buffer until it runs out of
// byte or description capacity.
type packetWriter struct {
	buf      *audio.Buffer
	withDesc bool
	offset   uint32
	packets  uint32
}

func newPacketWriter(buf *audio.Buffer, withDesc bool) *packetWriter {
	buf.Reset()
	return &packetWriter{buf: buf, withDesc: withDesc}
}

// fits reports whether a packet of size bytes can still be appended
func (w *packetWriter) fits(size uint32) bool {
	if w.withDesc && int(w.packets) >= len(w.buf.PacketDescriptions) {
		return false
	}
	return w.offset+size <= w.buf.Capacity()
}

// room returns the unused tail of the buffer
func (w *packetWriter) room() []byte {
	return w.buf.Data[w.offset:]
}

// commit records a packet of size bytes holding frames frames
func (w *packetWriter) commit(size, frames uint32) {
	if w.withDesc {
		w.buf.PacketDescriptions[w.packets] = audio.PacketDescription{
			StartOffset:            int64(w.offset),
			VariableFramesInPacket: frames,
			DataByteSize:           size,
		}
	}
	w.offset += size
	w.packets++
}

// finish publishes the size and description count on the buffer
func (w *packetWriter) finish() uint32 {
	w.buf.Size = w.offset
	if w.withDesc {
		w.buf.PacketDescriptionCount = w.packets
	} else {
		w.buf.PacketDescriptionCount = 0
	}
	return w.packets
}

// putSample writes one 16-bit little-endian sample
func putSample(dst []byte, sample int16) {
	binary.LittleEndian.PutUint16(dst, uint16(sample))
}

// pcmDescription describes interleaved 16-bit PCM with one frame per
// packet unless framesPerPacket says otherwise.
func pcmDescription(sampleRate float64, channels, framesPerPacket uint32, constant bool) audio.StreamDescription {
	bytesPerFrame := channels * bytesPerSample
	desc := audio.StreamDescription{
		SampleRate:       sampleRate,
		FormatID:         audio.FormatLinearPCM,
		FramesPerPacket:  framesPerPacket,
		BytesPerFrame:    bytesPerFrame,
		ChannelsPerFrame: channels,
		BitsPerChannel:   bytesPerSample * 8,
	}
	if constant {
		desc.BytesPerPacket = framesPerPacket * bytesPerFrame
	}
	return desc
}
