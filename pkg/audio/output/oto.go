// ABOUTME: Oto-based audio output implementation
// ABOUTME: Pulls PCM through an io.Reader into a process-wide oto context
package output

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/boombox/pkg/audio"
	"github.com/Resonate-Protocol/boombox/pkg/audio/resample"
	"github.com/ebitengine/oto/v3"
	log "github.com/sirupsen/logrus"
)

// oto only allows one context per process, so the context rate and
// channel count are fixed by the first Open.
const otoChannels = 2

var (
	otoOnce    sync.Once
	otoCtx     *oto.Context
	otoRate    int
	otoInitErr error
)

func sharedOtoContext(sampleRate int) (*oto.Context, int, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: otoChannels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoInitErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoRate = sampleRate
	})
	return otoCtx, otoRate, otoInitErr
}

// Oto output implementation using oto library
type Oto struct {
	preferredRate int
	player        *oto.Player
	reader        *renderReader
}

// NewOto creates a new Oto output. sampleRate fixes the context rate; zero
// uses the rate of the first stream opened.
func NewOto(sampleRate int) Output {
	return &Oto{preferredRate: sampleRate}
}

// Open attaches render to a new player on the shared context
func (o *Oto) Open(sampleRate, channels int, render RenderFunc) error {
	if o.player != nil {
		return fmt.Errorf("output already open")
	}

	rate := o.preferredRate
	if rate == 0 {
		rate = sampleRate
	}
	ctx, ctxRate, err := sharedOtoContext(rate)
	if err != nil {
		return err
	}

	if ctxRate != sampleRate {
		log.Printf("Warning: stream rate %dHz differs from output context %dHz, resampling",
			sampleRate, ctxRate)
	}

	o.reader = newRenderReader(render, sampleRate, channels, ctxRate, otoChannels)
	o.player = ctx.NewPlayer(o.reader)

	log.Printf("Audio output initialized: %dHz, %d channels (oto, context %dHz)", sampleRate, channels, ctxRate)

	return nil
}

// Start starts or resumes the player
func (o *Oto) Start() error {
	if o.player == nil {
		return fmt.Errorf("output not initialized")
	}
	o.player.Play()
	return nil
}

// Pause pauses the player
func (o *Oto) Pause() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	return nil
}

// Close releases the player; the shared context stays alive
func (o *Oto) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// renderReader adapts a RenderFunc to the io.Reader oto pulls from,
// converting channel count and sample rate on the way.
type renderReader struct {
	render    RenderFunc
	inCh      int
	outCh     int
	resampler *resample.Resampler

	in        []byte
	samples   []int32
	resampled []int32
}

func newRenderReader(render RenderFunc, inRate, inCh, outRate, outCh int) *renderReader {
	r := &renderReader{
		render: render,
		inCh:   inCh,
		outCh:  outCh,
	}
	if inRate != outRate {
		r.resampler = resample.New(inRate, outRate, outCh)
	}
	return r
}

func (r *renderReader) Read(p []byte) (int, error) {
	frames := len(p) / (r.outCh * 2)
	if frames == 0 {
		return 0, nil
	}

	inFrames := frames
	if r.resampler != nil {
		inFrames = r.resampler.InputSamplesNeeded(frames*r.outCh) / r.outCh
	}

	r.in = grow(r.in, inFrames*r.inCh*2)
	r.render(r.in)

	r.samples = grow(r.samples, inFrames*r.outCh)
	for f := 0; f < inFrames; f++ {
		for c := 0; c < r.outCh; c++ {
			src := min(c, r.inCh-1)
			s := int16(binary.LittleEndian.Uint16(r.in[(f*r.inCh+src)*2:]))
			r.samples[f*r.outCh+c] = audio.SampleFromInt16(s)
		}
	}

	out := r.samples[:frames*r.outCh]
	if r.resampler != nil {
		r.resampled = grow(r.resampled, frames*r.outCh)
		n := r.resampler.Resample(r.samples, r.resampled)
		out = r.resampled[:n]
	}

	for i, s := range out {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(audio.SampleToInt16(s)))
	}
	return len(out) * 2, nil
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
