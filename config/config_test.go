package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Default returns sane built-in values", t, func() {
		cfg := Default()
		So(cfg.LogLevel, ShouldEqual, "log")
		So(cfg.Training.Episodes, ShouldEqual, 1000)
		So(cfg.Metrics.Enabled, ShouldBeTrue)
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given a project config file overriding a subset of fields", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "cyberxp.yaml")
		contents := "log_level: debug\ntraining:\n  episodes: 50\n  epsilon: 0.1\n"
		So(os.WriteFile(path, []byte(contents), 0o644), ShouldBeNil)
		t.Setenv("CYBERXP_CONFIG", path)

		Convey("Load merges the file over the defaults, leaving unset fields untouched", func() {
			cfg, err := Load()
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.Training.Episodes, ShouldEqual, 50)
			So(cfg.Training.Epsilon, ShouldEqual, 0.1)
			So(cfg.Training.DiscountRate, ShouldEqual, 0.9)
		})
	})
}

func TestLoadEnvOverridesFile(t *testing.T) {
	Convey("Given both a config file and an environment override", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "cyberxp.yaml")
		So(os.WriteFile(path, []byte("training:\n  episodes: 50\n"), 0o644), ShouldBeNil)
		t.Setenv("CYBERXP_CONFIG", path)
		t.Setenv("CYBERXP_TRAINING_EPISODES", "200")

		Convey("The environment variable wins", func() {
			cfg, err := Load()
			So(err, ShouldBeNil)
			So(cfg.Training.Episodes, ShouldEqual, 200)
		})
	})
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	Convey("Given a CYBERXP_CONFIG pointing at a nonexistent file", t, func() {
		t.Setenv("CYBERXP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

		Convey("Load returns the defaults without error", func() {
			cfg, err := Load()
			So(err, ShouldBeNil)
			So(cfg.Training.Episodes, ShouldEqual, 1000)
		})
	})
}
