package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fightmatch/internal/cli"
	"github.com/okian/fightmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("FIGHTMATCH_ADDR", ":8080")
			t.Setenv("FIGHTMATCH_QUEUE_SIZE", "1000")
			t.Setenv("FIGHTMATCH_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When asking for help", func() {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{"help"}, &stdout, &stderr)

			convey.Convey("Then usage is printed", func() {
				convey.So(code, convey.ShouldEqual, cli.ExitOK)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "usage: fightmatch")
			})
		})

		convey.Convey("When recommending from an environment-configured features dir", func() {
			dir := t.TempDir()
			t.Setenv("FIGHTMATCH_FEATURES_DIR", filepath.Join(dir, "missing"))
			t.Setenv("FIGHTMATCH_PROCESSED_DIR", dir)
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{"recommend"}, &stdout, &stderr)

			convey.Convey("Then the missing table is an error", func() {
				convey.So(code, convey.ShouldEqual, cli.ExitError)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "recommend:")
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("FIGHTMATCH_ADDR", " ")
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{"serve"}, &stdout, &stderr)

			convey.Convey("Then nothing runs", func() {
				convey.So(code, convey.ShouldEqual, cli.ExitError)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "failed to load config")
				convey.So(stdout.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv("FIGHTMATCH_CONFIG", filepath.Join(os.TempDir(), "fightmatch-none.yaml"))
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{"help"}, &stdout, &stderr)

			convey.Convey("Then loading fails", func() {
				convey.So(code, convey.ShouldEqual, cli.ExitError)
			})
		})
	})
}
