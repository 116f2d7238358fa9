// ABOUTME: Terminal player entry point
// ABOUTME: Sets up keyboard events and the terminal, plays files and always restores the terminal
package app

import (
	"context"
	"errors"
	"os"

	"github.com/Resonate-Protocol/boombox/internal/config"
	"github.com/Resonate-Protocol/boombox/internal/events"
	"github.com/Resonate-Protocol/boombox/internal/ui"
	"github.com/Resonate-Protocol/boombox/internal/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Run plays paths on the controlling terminal. The terminal is restored
// before any playback error is returned.
func Run(ctx context.Context, cfg config.Config, paths []string) error {
	log.Printf("Starting %s: %d files, output %s", version.String(), len(paths), cfg.OutputBackend)

	mux, err := events.New(os.Stdin)
	if err != nil {
		return newFailure(SubsystemEventLoop, contextSetup, err)
	}

	terminal, err := ui.Activate(os.Stdin, os.Stdout)
	if err != nil {
		if cerr := mux.Close(); cerr != nil {
			log.Warnf("Failed to close events: %v", cerr)
		}
		return newFailure(SubsystemUI, contextSetup, err)
	}

	engine := NewEngine(afero.NewOsFs(), BackendDevices(cfg.OutputBackend, cfg.OutputSampleRate))
	boombox := New(mux, mux.Notifier(), terminal, engine, cfg)

	playErr := boombox.Play(ctx, paths)
	return errors.Join(playErr, shutdown(mux, terminal))
}

func shutdown(mux *events.Multiplexer, terminal *ui.Terminal) error {
	var errs []error
	if err := mux.Close(); err != nil {
		errs = append(errs, newFailure(SubsystemEventLoop, contextShutdown, err))
	}
	if err := terminal.Deactivate(); err != nil {
		errs = append(errs, newFailure(SubsystemUI, contextShutdown, err))
	}
	return errors.Join(errs...)
}
