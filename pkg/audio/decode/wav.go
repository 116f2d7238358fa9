// ABOUTME: WAV packet reader
// ABOUTME: Reads WAV files as one-frame 16-bit PCM packets via beep
package decode

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// WAVFile reads a WAV file with one frame per packet
type WAVFile struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	out      beep.Format // 16-bit re-encoding of format
	title    string
	scratch  [][2]float64
}

func openWAV(fs afero.Fs, path string) (*WAVFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	title := titleFromPath(path)
	log.Printf("Loaded WAV: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, format.SampleRate, format.NumChannels, format.Precision*8)

	return &WAVFile{
		streamer: streamer,
		format:   format,
		out: beep.Format{
			SampleRate:  format.SampleRate,
			NumChannels: format.NumChannels,
			Precision:   bytesPerSample,
		},
		title: title,
	}, nil
}

func (w *WAVFile) bytesPerFrame() uint32 {
	return uint32(w.format.NumChannels * bytesPerSample)
}

func (w *WAVFile) Format() (audio.StreamDescription, error) {
	return pcmDescription(float64(w.format.SampleRate), uint32(w.format.NumChannels), 1, true), nil
}

func (w *WAVFile) PacketSizeUpperBound() (uint32, error) {
	return w.bytesPerFrame(), nil
}

func (w *WAVFile) EstimatedDuration() (time.Duration, error) {
	return w.format.SampleRate.D(w.streamer.Len()), nil
}

func (w *WAVFile) Metadata() (map[string]string, error) {
	return map[string]string{
		"title":  w.title,
		"format": fmt.Sprintf("WAVE %d-bit", w.format.Precision*8),
	}, nil
}

func (w *WAVFile) MagicCookie() ([]byte, error) {
	return nil, nil
}

func (w *WAVFile) ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error) {
	if from < 0 {
		return 0, audio.NewStatusError("ReadPackets", audio.StatusInvalidParameter)
	}
	if int(from) != w.streamer.Position() {
		if int(from) >= w.streamer.Len() {
			buf.Reset()
			return 0, nil
		}
		if err := w.streamer.Seek(int(from)); err != nil {
			return 0, fmt.Errorf("failed to seek to packet %d: %w", from, err)
		}
	}

	frameSize := w.bytesPerFrame()
	capacity := buf.Capacity() / frameSize
	if withDescriptions {
		capacity = min(capacity, uint32(len(buf.PacketDescriptions)))
	}
	want := int(min(count, capacity))
	if cap(w.scratch) < want {
		w.scratch = make([][2]float64, want)
	}
	samples := w.scratch[:want]

	n, ok := w.streamer.Stream(samples)
	if !ok && n == 0 {
		buf.Reset()
		if err := w.streamer.Err(); err != nil {
			return 0, fmt.Errorf("wav decode error: %w", err)
		}
		return 0, nil
	}

	pw := newPacketWriter(buf, withDescriptions)
	for i := 0; i < n; i++ {
		written := w.out.EncodeSigned(pw.room(), samples[i])
		pw.commit(uint32(written), 1)
	}

	return pw.finish(), nil
}

func (w *WAVFile) Close() error {
	return w.streamer.Close()
}
