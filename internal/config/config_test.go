// ABOUTME: Tests for configuration setup and loading
// ABOUTME: Uses goconvey with an in-memory filesystem
package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func writeConfig(fs afero.Fs, contents string) {
	dir, err := os.UserConfigDir()
	So(err, ShouldBeNil)
	path := filepath.Join(dir, Name, Name+".toml")
	So(afero.WriteFile(fs, path, []byte(contents), 0o644), ShouldBeNil)
}

func TestSetup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/config")
	t.Setenv("HOME", "/home/test")

	Convey("Config Setup", t, func() {
		viper.Reset()
		fs := afero.NewMemMapFs()

		Convey("Should initialize without a config file", func() {
			So(Setup(fs), ShouldBeNil)
		})

		Convey("Should populate defaults", func() {
			So(Setup(fs), ShouldBeNil)
			for key, field := range Default {
				So(viper.Get(key), ShouldEqual, field.Value)
			}

			cfg := Load()
			So(cfg.FPS, ShouldEqual, 30)
			So(cfg.TimeEvery, ShouldEqual, 10)
			So(cfg.Volume, ShouldEqual, 16)
			So(cfg.OutputBackend, ShouldEqual, "malgo")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.LogJSON, ShouldBeFalse)
		})

		Convey("Should read boombox.toml", func() {
			writeConfig(fs, "[ui]\nfps = 60\n\n[output]\nbackend = \"oto\"\n")
			So(Setup(fs), ShouldBeNil)

			cfg := Load()
			So(cfg.FPS, ShouldEqual, 60)
			So(cfg.OutputBackend, ShouldEqual, "oto")
		})

		Convey("Should fail on a malformed config file", func() {
			writeConfig(fs, "[ui\nfps = ")
			So(Setup(fs), ShouldNotBeNil)
		})

		Convey("Should let the environment override defaults", func() {
			t.Setenv("BOOMBOX_PLAYBACK_VOLUME", "4")
			So(Setup(fs), ShouldBeNil)
			So(Load().Volume, ShouldEqual, 4)
		})

		Convey("Should clamp out of range values", func() {
			So(Setup(fs), ShouldBeNil)
			viper.Set(KeyPlaybackVolume, 40)
			viper.Set(KeyUIFPS, 0)
			viper.Set(KeyUITimeEvery, -2)

			cfg := Load()
			So(cfg.Volume, ShouldEqual, 16)
			So(cfg.FPS, ShouldEqual, 1)
			So(cfg.TimeEvery, ShouldEqual, 1)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Field", t, func() {
		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("output.sample_rate"), ShouldEqual, "output_sample_rate")
		})

		Convey("Env should carry the prefix", func() {
			So(Default[KeyLogsJSON].Env(), ShouldEqual, "BOOMBOX_LOGS_JSON")
		})

		Convey("Every key should be registered", func() {
			for _, key := range []string{
				KeyUIFPS, KeyUITimeEvery, KeyPlaybackVolume, KeyOutputBackend,
				KeyOutputSampleRate, KeyLogsFile, KeyLogsLevel, KeyLogsJSON,
			} {
				_, ok := Default[key]
				So(ok, ShouldBeTrue)
			}
		})
	})
}
