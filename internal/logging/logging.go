// ABOUTME: Logrus setup from configuration
// ABOUTME: Sends logs to a file or discards them while the terminal is in raw mode
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/boombox/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the standard logger from the current settings. Logs go
// to logs.file when set and are discarded otherwise. The returned closer
// releases the log file.
func Setup(fs afero.Fs) (io.Closer, error) {
	cfg := config.Load()

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		f, err := fs.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	log.SetOutput(out)

	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	return closer, nil
}
