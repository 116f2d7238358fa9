// ABOUTME: Player application control loop
// ABOUTME: Plays files one after another, reacting to keys, ticks and engine events
package app

import (
	"context"
	"errors"
	"time"

	"github.com/Resonate-Protocol/boombox/internal/config"
	"github.com/Resonate-Protocol/boombox/internal/events"
	"github.com/Resonate-Protocol/boombox/internal/player"
	"github.com/Resonate-Protocol/boombox/internal/ui"
	"github.com/google/uuid"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

// EventSource is the control loop's single stream of events
type EventSource interface {
	Next() (events.Event, error)
	EnableUITimer(d time.Duration)
	DisableUITimer()
}

// Display renders the player
type Display interface {
	ResetScreen()
	DisplayFilename(path string)
	DisplayMetadata(metadata map[string]string)
	DisplayStatus(status ui.Status)
	DisplayMeter(levels [2]float32)
	UpdateSize()
	Flush() error
}

// Boombox plays a list of files on one event source and display
type Boombox struct {
	events    EventSource
	notifier  player.Notifier
	display   Display
	engine    player.Engine
	volume    player.PlaybackVolume
	tick      time.Duration
	timeEvery int
	log       *log.Entry
}

// New creates a player. notifier must feed events into source.
func New(source EventSource, notifier player.Notifier, display Display, engine player.Engine, cfg config.Config) *Boombox {
	return &Boombox{
		events:    source,
		notifier:  notifier,
		display:   display,
		engine:    engine,
		volume:    player.NewPlaybackVolume(cfg.Volume),
		tick:      time.Second / time.Duration(max(cfg.FPS, 1)),
		timeEvery: max(cfg.TimeEvery, 1),
		log:       log.WithField("session", uuid.NewString()),
	}
}

// Volume returns the current volume, which carries over between files
func (b *Boombox) Volume() player.PlaybackVolume {
	return b.volume
}

// Play plays paths in order until they run out or exit is requested.
// Cancelling ctx requests exit.
func (b *Boombox) Play(ctx context.Context, paths []string) error {
	stop := context.AfterFunc(ctx, func() {
		b.notifier.Notify(events.ExitKeyPressed)
	})
	defer stop()

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		exit, err := b.PlayFile(path)
		if err != nil {
			return err
		}
		if exit {
			b.log.Info("Exit requested")
			break
		}
	}
	return nil
}

// session is the loop state for one file
type session struct {
	path       string
	controller *player.Controller
	meter      player.MeterState
	paused     bool
	started    bool
	armed      bool
	ticks      int
	elapsed    mo.Option[time.Duration]
	levels     [2]float32
}

// PlayFile plays one file until it finishes or is skipped. exit reports
// whether the user asked to quit.
func (b *Boombox) PlayFile(path string) (exit bool, err error) {
	activity := playingBack(path)

	controller, err := player.NewController(b.engine, path, b.notifier)
	if err != nil {
		return false, newFailure(SubsystemPlayback, activity, err)
	}
	defer func() {
		if cerr := controller.Close(); cerr != nil {
			err = errors.Join(err, newFailure(SubsystemPlayback, activity, cerr))
		}
	}()

	s := &session{
		path:       path,
		controller: controller,
		meter:      controller.NewMeterState(),
		elapsed:    mo.None[time.Duration](),
	}
	b.log.WithField("file", path).Info("Playing")

	b.redraw(s)
	if err := b.flush(); err != nil {
		return false, newFailure(SubsystemPlayback, activity, err)
	}

	if err := controller.SetVolume(b.volume); err != nil {
		return false, newFailure(SubsystemPlayback, activity, err)
	}
	if err := controller.Start(); err != nil {
		return false, newFailure(SubsystemPlayback, activity, err)
	}

	exit, err = b.loop(s)
	if err != nil {
		b.disarm(s)
		return exit, newFailure(SubsystemPlayback, activity, err)
	}

	if err := controller.Err(); err != nil {
		return exit, newFailure(SubsystemPlayback, activity, err)
	}

	stats := controller.Stats()
	b.log.WithFields(log.Fields{
		"file":    path,
		"reads":   stats.Reads,
		"buffers": stats.Enqueued,
		"packets": stats.Packets,
		"ignored": stats.Ignored,
	}).Info("Finished")
	return exit, nil
}

// loop handles events until the engine reports the end of playback
func (b *Boombox) loop(s *session) (bool, error) {
	exit := false
	for {
		ev, err := b.events.Next()
		if err != nil {
			return exit, err
		}

		switch ev {
		case events.PlaybackStarted:
			s.started = true
			if !s.paused {
				b.arm(s)
			}

		case events.PauseKeyPressed:
			if err := b.togglePause(s); err != nil {
				return exit, err
			}

		case events.VolumeUpKeyPressed, events.VolumeDownKeyPressed:
			if ev == events.VolumeUpKeyPressed {
				b.volume.Increment()
			} else {
				b.volume.Decrement()
			}
			if err := s.controller.SetVolume(b.volume); err != nil {
				return exit, err
			}
			b.display.DisplayStatus(b.status(s))
			if err := b.flush(); err != nil {
				return exit, err
			}

		case events.NextTrackKeyPressed:
			if err := s.controller.Stop(); err != nil {
				return exit, err
			}

		case events.ExitKeyPressed:
			exit = true
			if err := s.controller.Stop(); err != nil {
				return exit, err
			}

		case events.PlaybackFinished:
			b.disarm(s)
			return exit, nil

		case events.UITick:
			s.armed = false
			if err := b.refresh(s); err != nil {
				return exit, err
			}
			if !s.paused {
				b.arm(s)
			}

		case events.TerminalResized:
			b.display.UpdateSize()
			b.redraw(s)
			if err := b.flush(); err != nil {
				return exit, err
			}

		default:
			b.log.Debugf("Ignoring event %v", ev)
		}
	}
}

func (b *Boombox) togglePause(s *session) error {
	s.paused = !s.paused
	if s.paused {
		if err := s.controller.Pause(); err != nil {
			return err
		}
		b.disarm(s)
	} else {
		if err := s.controller.Resume(); err != nil {
			return err
		}
		if s.started {
			b.arm(s)
		}
	}

	b.display.DisplayStatus(b.status(s))
	return b.flush()
}

// refresh updates meters every tick and the clock every few ticks
func (b *Boombox) refresh(s *session) error {
	if err := s.controller.MeterLevel(&s.meter); err != nil {
		b.log.Debugf("Skipping meter update: %v", err)
	} else {
		s.levels = s.meter.Stereo()
	}

	if s.ticks%b.timeEvery == 0 {
		s.elapsed = s.controller.PlaybackTime()
	}
	s.ticks++

	b.display.DisplayStatus(b.status(s))
	b.display.DisplayMeter(s.levels)
	return b.flush()
}

func (b *Boombox) redraw(s *session) {
	b.display.ResetScreen()
	b.display.DisplayFilename(s.path)
	b.display.DisplayMetadata(s.controller.Metadata())
	b.display.DisplayStatus(b.status(s))
	b.display.DisplayMeter(s.levels)
}

func (b *Boombox) status(s *session) ui.Status {
	return ui.Status{
		Paused:  s.paused,
		Volume:  b.volume.Percent(),
		Elapsed: s.elapsed,
		Total:   s.controller.EstimatedDuration(),
	}
}

func (b *Boombox) flush() error {
	if err := b.display.Flush(); err != nil {
		return &displayError{err: err}
	}
	return nil
}

func (b *Boombox) arm(s *session) {
	if s.armed {
		return
	}
	b.events.EnableUITimer(b.tick)
	s.armed = true
}

func (b *Boombox) disarm(s *session) {
	if !s.armed {
		return
	}
	b.events.DisableUITimer()
	s.armed = false
}
