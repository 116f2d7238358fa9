// ABOUTME: Viper-backed configuration for the player
// ABOUTME: Registers defaults, binds BOOMBOX_ env vars and reads boombox.toml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Name is used for the config file, its directory and the env prefix
const Name = "boombox"

// Configuration keys
const (
	KeyUIFPS            = "ui.fps"
	KeyUITimeEvery      = "ui.time_every"
	KeyPlaybackVolume   = "playback.volume"
	KeyOutputBackend    = "output.backend"
	KeyOutputSampleRate = "output.sample_rate"
	KeyLogsFile         = "logs.file"
	KeyLogsLevel        = "logs.level"
	KeyLogsJSON         = "logs.json"
)

// EnvKeyReplacer maps config keys to environment variable names
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Field is a registered configuration key with its default
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that overrides the field
func (f Field) Env() string {
	return strings.ToUpper(Name + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Default holds every registered field by key
var Default = make(map[string]Field)

func register(key string, value any, description string) {
	if _, exists := Default[key]; exists {
		panic("duplicate config key: " + key)
	}
	Default[key] = Field{Key: key, Value: value, Description: description}
}

func init() {
	register(KeyUIFPS, 30, "Screen refreshes per second")
	register(KeyUITimeEvery, 10, "Refreshes between playback time queries")
	register(KeyPlaybackVolume, 16, "Initial volume step, from 0 to 16")
	register(KeyOutputBackend, "malgo", "Audio output: malgo, oto or null")
	register(KeyOutputSampleRate, 0, "Output rate for oto, 0 uses the first file's rate")
	register(KeyLogsFile, "", "Write logs to this file")
	register(KeyLogsLevel, "info", "Log level: panic, fatal, error, warn, info, debug, trace")
	register(KeyLogsJSON, false, "Use json format for logs")
}

// Setup registers defaults and env bindings on the global viper instance
// and reads the config file from fs when one exists
func Setup(fs afero.Fs) error {
	viper.SetConfigName(Name)
	viper.SetConfigType("toml")
	viper.SetFs(fs)
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, Name))
	}

	viper.SetEnvPrefix(Name)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	viper.SetTypeByDefaultValue(true)
	for key, field := range Default {
		viper.SetDefault(key, field.Value)
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", field.Env(), err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Config is a snapshot of the settings the player uses
type Config struct {
	FPS              int
	TimeEvery        int
	Volume           int
	OutputBackend    string
	OutputSampleRate int
	LogFile          string
	LogLevel         string
	LogJSON          bool
}

// Load snapshots the current settings, clamping numbers into usable ranges
func Load() Config {
	return Config{
		FPS:              lo.Clamp(viper.GetInt(KeyUIFPS), 1, 120),
		TimeEvery:        max(viper.GetInt(KeyUITimeEvery), 1),
		Volume:           lo.Clamp(viper.GetInt(KeyPlaybackVolume), 0, 16),
		OutputBackend:    strings.ToLower(viper.GetString(KeyOutputBackend)),
		OutputSampleRate: max(viper.GetInt(KeyOutputSampleRate), 0),
		LogFile:          viper.GetString(KeyLogsFile),
		LogLevel:         viper.GetString(KeyLogsLevel),
		LogJSON:          viper.GetBool(KeyLogsJSON),
	}
}
