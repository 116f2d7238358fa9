// ABOUTME: MP3 packet reader
// ABOUTME: Decodes MP3 to fixed-size 16-bit stereo PCM packets via go-mp3
package decode

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// Decoded PCM is handed out in chunks of this many frames. It is not
	// tied to the MPEG frame size, which is 576 for MPEG-2 and 2.5.
	mp3ChunkFrames = 1152
	// go-mp3 always decodes to stereo
	mp3Channels      = 2
	mp3BytesPerFrame = mp3Channels * bytesPerSample
	mp3ChunkBytes    = mp3ChunkFrames * mp3BytesPerFrame
)

// MP3File reads an MP3 file as constant-size PCM packets
type MP3File struct {
	file    afero.File
	decoder *mp3.Decoder
	title   string
	next    int64 // packet the decoder is positioned at
}

func openMP3(fs afero.Fs, path string) (*MP3File, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	title := titleFromPath(path)
	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", title, decoder.SampleRate())

	return &MP3File{
		file:    f,
		decoder: decoder,
		title:   title,
	}, nil
}

func (m *MP3File) Format() (audio.StreamDescription, error) {
	return pcmDescription(float64(m.decoder.SampleRate()), mp3Channels, mp3ChunkFrames, true), nil
}

func (m *MP3File) PacketSizeUpperBound() (uint32, error) {
	return mp3ChunkBytes, nil
}

func (m *MP3File) EstimatedDuration() (time.Duration, error) {
	length := m.decoder.Length()
	if length <= 0 {
		return 0, nil
	}
	frames := float64(length / mp3BytesPerFrame)
	return time.Duration(frames / float64(m.decoder.SampleRate()) * float64(time.Second)), nil
}

func (m *MP3File) Metadata() (map[string]string, error) {
	return map[string]string{
		"title":  m.title,
		"format": mp3FormatName(m.decoder.SampleRate()),
	}, nil
}

// mp3FormatName names the MPEG version implied by a Layer III sample rate
func mp3FormatName(sampleRate int) string {
	switch sampleRate {
	case 32000, 44100, 48000:
		return "MPEG-1 Layer III"
	case 16000, 22050, 24000:
		return "MPEG-2 Layer III"
	case 8000, 11025, 12000:
		return "MPEG-2.5 Layer III"
	default:
		return "MP3"
	}
}

func (m *MP3File) MagicCookie() ([]byte, error) {
	return nil, nil
}

func (m *MP3File) ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error) {
	if from < 0 {
		return 0, audio.NewStatusError("ReadPackets", audio.StatusInvalidParameter)
	}
	if from != m.next {
		if _, err := m.decoder.Seek(from*mp3ChunkBytes, io.SeekStart); err != nil {
			return 0, fmt.Errorf("failed to seek to packet %d: %w", from, err)
		}
		m.next = from
	}

	w := newPacketWriter(buf, withDescriptions)
	for i := uint32(0); i < count && w.fits(mp3ChunkBytes); i++ {
		n, err := io.ReadFull(m.decoder, w.room()[:mp3ChunkBytes])
		// The final packet of a stream is usually short
		n -= n % mp3BytesPerFrame
		if n > 0 {
			w.commit(uint32(n), uint32(n/mp3BytesPerFrame))
			m.next++
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return w.finish(), fmt.Errorf("mp3 decode error: %w", err)
		}
	}

	return w.finish(), nil
}

func (m *MP3File) Close() error {
	return m.file.Close()
}
