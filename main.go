// ABOUTME: Entry point for the boombox audio file player
// ABOUTME: Parses CLI flags, loads configuration and plays the given files
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Resonate-Protocol/boombox/internal/app"
	"github.com/Resonate-Protocol/boombox/internal/config"
	"github.com/Resonate-Protocol/boombox/internal/logging"
	"github.com/Resonate-Protocol/boombox/internal/version"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           version.Product + " [flags] [audio-file ...]",
	Short:         "Play audio files in the terminal",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.SetVersionTemplate(version.String() + "\n")

	flags := rootCmd.Flags()

	flags.IntP("volume", "v", 16, "Initial volume step, from 0 to 16")
	lo.Must0(viper.BindPFlag(config.KeyPlaybackVolume, flags.Lookup("volume")))

	flags.Int("fps", 30, "Screen refreshes per second")
	lo.Must0(viper.BindPFlag(config.KeyUIFPS, flags.Lookup("fps")))

	flags.StringP("output", "o", "malgo", "Audio output: malgo, oto or null")
	lo.Must0(viper.BindPFlag(config.KeyOutputBackend, flags.Lookup("output")))

	flags.String("log-file", "", "Write logs to this file")
	lo.Must0(viper.BindPFlag(config.KeyLogsFile, flags.Lookup("log-file")))

	flags.String("log-level", "info", "Log level")
	lo.Must0(viper.BindPFlag(config.KeyLogsLevel, flags.Lookup("log-level")))
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [audio-file ...]\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	fs := afero.NewOsFs()
	if err := config.Setup(fs); err != nil {
		return err
	}
	logFile, err := logging.Setup(fs)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := app.Run(ctx, cfg, args); err != nil {
		log.Errorf("Exiting: %v", err)
		return err
	}
	log.Printf("Player stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
