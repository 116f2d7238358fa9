// ABOUTME: Tests for the PCM packet writer
// ABOUTME: Tests capacity limits, descriptions and stream descriptions
package decode

import (
	"encoding/binary"
	"testing"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
)

func TestPacketWriterByteCapacity(t *testing.T) {
	buf := &audio.Buffer{Data: make([]byte, 10)}
	w := newPacketWriter(buf, false)

	if !w.fits(4) {
		t.Fatal("expected first packet to fit")
	}
	w.commit(4, 1)
	w.commit(4, 1)

	if w.fits(4) {
		t.Error("expected third packet not to fit in 10 bytes")
	}
	if !w.fits(2) {
		t.Error("expected 2 bytes to still fit")
	}

	if n := w.finish(); n != 2 {
		t.Errorf("expected 2 packets, got %d", n)
	}
	if buf.Size != 8 {
		t.Errorf("expected size 8, got %d", buf.Size)
	}
	if buf.PacketDescriptionCount != 0 {
		t.Errorf("expected no descriptions, got %d", buf.PacketDescriptionCount)
	}
}

func TestPacketWriterDescriptions(t *testing.T) {
	buf := &audio.Buffer{
		Data:               make([]byte, 100),
		PacketDescriptions: make([]audio.PacketDescription, 2),
	}
	w := newPacketWriter(buf, true)

	w.commit(8, 2)
	w.commit(12, 3)

	if w.fits(1) {
		t.Error("expected description capacity to limit packets")
	}

	if n := w.finish(); n != 2 {
		t.Fatalf("expected 2 packets, got %d", n)
	}
	if buf.PacketDescriptionCount != 2 {
		t.Errorf("expected 2 descriptions, got %d", buf.PacketDescriptionCount)
	}

	second := buf.PacketDescriptions[1]
	if second.StartOffset != 8 || second.DataByteSize != 12 || second.VariableFramesInPacket != 3 {
		t.Errorf("unexpected second description: %+v", second)
	}
}

func TestPacketWriterResetsBuffer(t *testing.T) {
	buf := &audio.Buffer{Data: make([]byte, 8), Size: 8, PacketDescriptionCount: 3}
	w := newPacketWriter(buf, false)

	if n := w.finish(); n != 0 {
		t.Errorf("expected 0 packets, got %d", n)
	}
	if buf.Size != 0 || buf.PacketDescriptionCount != 0 {
		t.Errorf("expected buffer reset, got size=%d descriptions=%d", buf.Size, buf.PacketDescriptionCount)
	}
}

func TestPutSample(t *testing.T) {
	dst := make([]byte, 2)
	putSample(dst, -2)

	if got := int16(binary.LittleEndian.Uint16(dst)); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}
}

func TestPCMDescription(t *testing.T) {
	cbr := pcmDescription(44100, 2, 1152, true)
	if cbr.BytesPerPacket != 4608 {
		t.Errorf("expected 4608 bytes per packet, got %d", cbr.BytesPerPacket)
	}
	if cbr.BytesPerFrame != 4 || cbr.BitsPerChannel != 16 {
		t.Errorf("unexpected frame layout: %+v", cbr)
	}
	if cbr.VariableBitRate() {
		t.Error("expected constant description")
	}

	vbr := pcmDescription(48000, 1, 4096, false)
	if vbr.BytesPerPacket != 0 {
		t.Errorf("expected unknown bytes per packet, got %d", vbr.BytesPerPacket)
	}
	if !vbr.VariableBitRate() {
		t.Error("expected variable description")
	}
}
