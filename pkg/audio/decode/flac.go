// ABOUTME: FLAC packet reader
// ABOUTME: Decodes FLAC frames to variable-size 16-bit PCM packets via mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FLACFile reads a FLAC file one frame per packet. Frames are parsed
// sequentially, so packets must be requested in order.
type FLACFile struct {
	file     afero.File
	stream   *flac.Stream
	title    string
	tags     [][2]string
	next     int64
	pending  *frame.Frame // parsed but did not fit the previous buffer
	channels uint32
	bits     int
}

func openFLAC(fs afero.Fs, path string) (*FLACFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.Parse(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	title := titleFromPath(path)

	var tags [][2]string
	for _, block := range stream.Blocks {
		if comment, ok := block.Body.(*meta.VorbisComment); ok {
			tags = append(tags, comment.Tags...)
		}
	}

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, info.SampleRate, info.NChannels, info.BitsPerSample)

	return &FLACFile{
		file:     f,
		stream:   stream,
		title:    title,
		tags:     tags,
		channels: uint32(info.NChannels),
		bits:     int(info.BitsPerSample),
	}, nil
}

func (f *FLACFile) Format() (audio.StreamDescription, error) {
	info := f.stream.Info
	// Only a fixed block size gives a known frames-per-packet; the byte
	// size still varies because the final frame is short.
	var framesPerPacket uint32
	if info.BlockSizeMin == info.BlockSizeMax {
		framesPerPacket = uint32(info.BlockSizeMax)
	}
	return pcmDescription(float64(info.SampleRate), f.channels, framesPerPacket, false), nil
}

func (f *FLACFile) PacketSizeUpperBound() (uint32, error) {
	return uint32(f.stream.Info.BlockSizeMax) * f.channels * bytesPerSample, nil
}

func (f *FLACFile) EstimatedDuration() (time.Duration, error) {
	info := f.stream.Info
	if info.NSamples == 0 || info.SampleRate == 0 {
		return 0, nil
	}
	return time.Duration(float64(info.NSamples) / float64(info.SampleRate) * float64(time.Second)), nil
}

// Metadata returns the Vorbis comments with lower-cased keys
func (f *FLACFile) Metadata() (map[string]string, error) {
	md := map[string]string{
		"title":  f.title,
		"format": "FLAC",
	}
	seen := make(map[string]bool)
	for _, tag := range f.tags {
		key := strings.ToLower(tag[0])
		if seen[key] {
			md[key] += ", " + tag[1]
			continue
		}
		seen[key] = true
		md[key] = tag[1]
	}
	return md, nil
}

func (f *FLACFile) MagicCookie() ([]byte, error) {
	return nil, nil
}

func (f *FLACFile) ReadPackets(from int64, count uint32, buf *audio.Buffer, withDescriptions bool) (uint32, error) {
	if from != f.next {
		return 0, &audio.StatusError{
			Op:   "ReadPackets",
			Code: audio.StatusInvalidParameter,
			Err:  fmt.Errorf("flac packets must be read in order (want %d, got %d)", f.next, from),
		}
	}

	w := newPacketWriter(buf, withDescriptions)
	for i := uint32(0); i < count; i++ {
		fr := f.pending
		f.pending = nil
		if fr == nil {
			var err error
			fr, err = f.stream.ParseNext()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return w.finish(), fmt.Errorf("flac decode error: %w", err)
			}
		}

		frames := uint32(fr.BlockSize)
		size := frames * f.channels * bytesPerSample
		if !w.fits(size) {
			f.pending = fr
			if w.packets == 0 {
				return 0, audio.NewStatusError("ReadPackets", audio.StatusInvalidBuffer)
			}
			break
		}

		f.writeFrame(w.room(), fr)
		w.commit(size, frames)
		f.next++
	}

	return w.finish(), nil
}

// writeFrame interleaves the subframes of fr as 16-bit samples
func (f *FLACFile) writeFrame(dst []byte, fr *frame.Frame) {
	off := 0
	for i := 0; i < int(fr.BlockSize); i++ {
		for ch := 0; ch < int(f.channels); ch++ {
			putSample(dst[off:], audio.ScaleToInt16(fr.Subframes[ch].Samples[i], f.bits))
			off += bytesPerSample
		}
	}
}

func (f *FLACFile) Close() error {
	if err := f.stream.Close(); err != nil {
		log.Printf("Warning: flac stream close error: %v", err)
	}
	// The stream may already have closed the underlying file
	if err := f.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
