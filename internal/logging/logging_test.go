// ABOUTME: Tests for logging setup
// ABOUTME: Checks file output, formatter choice and level fallback
package logging

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/boombox/internal/config"
	log "github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Logging Setup", t, func() {
		viper.Reset()
		fs := afero.NewMemMapFs()
		So(config.Setup(fs), ShouldBeNil)

		Reset(func() {
			log.SetOutput(io.Discard)
			log.SetLevel(log.InfoLevel)
		})

		Convey("Should discard logs without a log file", func() {
			closer, err := Setup(fs)
			So(err, ShouldBeNil)
			So(closer.Close(), ShouldBeNil)
			So(log.StandardLogger().Out, ShouldEqual, io.Discard)
		})

		Convey("Should append text logs to the log file", func() {
			viper.Set(config.KeyLogsFile, "/var/log/boombox.log")
			So(afero.WriteFile(fs, "/var/log/boombox.log", []byte("earlier\n"), 0o644), ShouldBeNil)

			closer, err := Setup(fs)
			So(err, ShouldBeNil)
			log.Info("hello")
			So(closer.Close(), ShouldBeNil)

			data, err := afero.ReadFile(fs, "/var/log/boombox.log")
			So(err, ShouldBeNil)
			So(strings.HasPrefix(string(data), "earlier\n"), ShouldBeTrue)
			So(string(data), ShouldContainSubstring, "msg=hello")
		})

		Convey("Should write json when asked", func() {
			viper.Set(config.KeyLogsFile, "/boombox.log")
			viper.Set(config.KeyLogsJSON, true)

			closer, err := Setup(fs)
			So(err, ShouldBeNil)
			log.Warn("loud")
			So(closer.Close(), ShouldBeNil)

			data, err := afero.ReadFile(fs, "/boombox.log")
			So(err, ShouldBeNil)
			var entry map[string]any
			So(json.Unmarshal(data, &entry), ShouldBeNil)
			So(entry["msg"], ShouldEqual, "loud")
			So(entry["level"], ShouldEqual, "warning")
		})

		Convey("Should parse the level", func() {
			viper.Set(config.KeyLogsLevel, "debug")
			_, err := Setup(fs)
			So(err, ShouldBeNil)
			So(log.GetLevel(), ShouldEqual, log.DebugLevel)
		})

		Convey("Should fall back to info on an unknown level", func() {
			viper.Set(config.KeyLogsLevel, "chatty")
			_, err := Setup(fs)
			So(err, ShouldBeNil)
			So(log.GetLevel(), ShouldEqual, log.InfoLevel)
		})

		Convey("Should fail when the log file cannot be opened", func() {
			viper.Set(config.KeyLogsFile, "/boombox.log")
			_, err := Setup(afero.NewReadOnlyFs(fs))
			So(err, ShouldNotBeNil)
		})
	})
}
