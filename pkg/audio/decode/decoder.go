// ABOUTME: Packet file interface definition
// ABOUTME: Opens audio files and dispatches on extension to a packet reader
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/spf13/afero"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// File reads an audio file as a sequence of numbered packets of 16-bit
// little-endian PCM.
type File interface {
	// Format describes how the file is packetised
	Format() (audio.StreamDescription, error)

	// PacketSizeUpperBound is the largest packet the file can produce
	PacketSizeUpperBound() (uint32, error)

	// EstimatedDuration is zero when the length is unknown
	EstimatedDuration() (time.Duration, error)

	// Metadata returns string properties such as title and artist
	Metadata() (map[string]string, error)

	// MagicCookie returns codec configuration, nil when none is needed
	MagicCookie() ([]byte, error)

	// ReadPackets reads up to count packets starting at packet index from
	// into buf. Zero packets means end of file. Packet descriptions are
	// written only when withDescriptions is set.
	ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error)

	// Close releases the file
	Close() error
}

// Open opens path on fs and returns a packet reader for it
func Open(fs afero.Fs, path string) (File, error) {
	if _, err := fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}

	// Determine file type by extension
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		return openMP3(fs, path)
	case ".flac":
		return openFLAC(fs, path)
	case ".wav", ".wave":
		return openWAV(fs, path)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .mp3, .flac, .wav)", ErrUnsupportedFormat, ext)
	}
}

// titleFromPath uses the file name without extension as the title
func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
