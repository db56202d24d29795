package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/cli"
	"github.com/okian/fightmatch/internal/config"
	model "github.com/okian/fightmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig(dir string) *config.Config {
	cfg := config.New(context.Background())
	cfg.RawDir = filepath.Join(dir, "raw")
	cfg.ProcessedDir = filepath.Join(dir, "processed")
	cfg.FeaturesDir = filepath.Join(dir, "features")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.WorkerCount = 1
	cfg.QueueSize = 8
	cfg.APIRateLimit = 0
	return cfg
}

func writeFeatures(cfg *config.Config) {
	lw := model.Ptr("Lightweight")
	rows := []model.FeatureRow{
		{FighterID: "fred1", Name: "Fred", WeightClass: lw, ActivityRecencyDays: model.Ptr(30), WinStreak: 2,
			Last5WinPct: model.Ptr(0.8), FinishRate: model.Ptr(0.5)},
		{FighterID: "barney2", Name: "Barney", WeightClass: lw, ActivityRecencyDays: model.Ptr(45), WinStreak: 1,
			Last5WinPct: model.Ptr(0.6)},
		{FighterID: "dino4", Name: "Dino", WeightClass: lw, ActivityRecencyDays: model.Ptr(90)},
	}
	if err := dataset.SaveFeatures(cfg.FeaturesPath(), rows); err != nil {
		panic(err)
	}
}

func run(cfg *config.Config, args ...string) (int, string, string) {
	return runCtx(context.Background(), cfg, args...)
}

func runCtx(ctx context.Context, cfg *config.Config, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := cli.New(&stdout, &stderr, cli.WithConfig(cfg)).Run(ctx, args)
	return code, stdout.String(), stderr.String()
}

func TestApp_Usage(t *testing.T) {
	Convey("Given an app", t, func() {
		cfg := testConfig(t.TempDir())

		Convey("When asking for help", func() {
			code, _, stderr := run(cfg, "help")

			Convey("Then every command is listed", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stderr, ShouldContainSubstring, "recommend")
				So(stderr, ShouldContainSubstring, "build-dataset")
			})
		})

		Convey("When no command is given", func() {
			code, _, _ := run(cfg)
			So(code, ShouldEqual, cli.ExitUsage)
		})

		Convey("When the command is unknown", func() {
			code, _, stderr := run(cfg, "train")

			Convey("Then it is a usage error", func() {
				So(code, ShouldEqual, cli.ExitUsage)
				So(stderr, ShouldContainSubstring, `unknown command "train"`)
			})
		})

		Convey("When a flag is malformed", func() {
			code, _, _ := run(cfg, "recommend", "--top", "many")
			So(code, ShouldEqual, cli.ExitUsage)
		})

		Convey("When a command is asked for its flags", func() {
			code, _, stderr := run(cfg, "scrape", "-h")

			Convey("Then they are printed", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stderr, ShouldContainSubstring, "-since")
			})
		})
	})
}

func TestApp_Pipeline(t *testing.T) {
	Convey("Given an empty data directory", t, func() {
		dir := t.TempDir()
		cfg := testConfig(dir)

		Convey("When scraping with a malformed date", func() {
			code, _, stderr := run(cfg, "scrape", "--since", "2024/01/01")

			Convey("Then it fails before fetching", func() {
				So(code, ShouldEqual, cli.ExitError)
				So(stderr, ShouldContainSubstring, "scrape:")
			})
		})

		Convey("When building a dataset without raw pages", func() {
			code, _, _ := run(cfg, "build-dataset")
			So(code, ShouldEqual, cli.ExitError)
		})

		Convey("When building features without a processed dataset", func() {
			code, _, _ := run(cfg, "features")
			So(code, ShouldEqual, cli.ExitError)
		})

		Convey("When a processed dataset exists", func() {
			ds := &model.Dataset{Fighters: []model.Fighter{
				{FighterID: "fred1", Name: "Fred"},
				{FighterID: "barney2", Name: "Barney"},
			}}
			So(dataset.NewStore().Save(context.Background(), cfg.ProcessedDir, ds), ShouldBeNil)
			out := filepath.Join(dir, "out", "features.csv")
			code, stdout, _ := run(cfg, "features", "--out", out)

			Convey("Then the features table is written", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout, ShouldContainSubstring, "wrote 2 feature rows")
				_, err := os.Stat(out)
				So(err, ShouldBeNil)
			})

			Convey("Then snapshots can be built too", func() {
				code, stdout, _ := run(cfg, "snapshots")
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout, ShouldContainSubstring, "wrote 0 snapshot rows")
			})
		})
	})
}

func TestApp_Recommend(t *testing.T) {
	Convey("Given a features table", t, func() {
		cfg := testConfig(t.TempDir())
		writeFeatures(cfg)

		Convey("When recommending a division", func() {
			code, stdout, _ := run(cfg, "recommend", "--division", "Lightweight", "--top", "2", "--no-avoid-rematch")

			Convey("Then the report is printed as markdown", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout, ShouldStartWith, "# FightMatch recommended matchups\n# Division: Lightweight\n\n## 1. ")
				So(stdout, ShouldContainSubstring, "## 2. ")
				So(stdout, ShouldNotContainSubstring, "## 3. ")
				So(stdout, ShouldContainSubstring, "   Rank scores: ")
				So(stdout, ShouldContainSubstring, "   - ")
			})
		})

		Convey("When no division is given", func() {
			code, stdout, _ := run(cfg, "recommend")

			Convey("Then all fighters are ranked together", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout, ShouldContainSubstring, "# Division: All")
			})
		})

		Convey("When the division is empty", func() {
			code, _, stderr := run(cfg, "recommend", "--division", "Flyweight")

			Convey("Then it fails", func() {
				So(code, ShouldEqual, cli.ExitError)
				So(stderr, ShouldContainSubstring, "Flyweight")
			})
		})

		Convey("When listing opponents", func() {
			code, stdout, _ := run(cfg, "opponents", "--fighter", "fred1", "--top", "1")

			Convey("Then the best candidate is printed", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout, ShouldStartWith, "# FightMatch opponents for Fred\n")
				So(stdout, ShouldContainSubstring, "## 1. ")
				So(stdout, ShouldNotContainSubstring, "## 2. ")
				So(stdout, ShouldContainSubstring, "Matchup score: ")
			})
		})

		Convey("When the fighter is missing", func() {
			code, _, _ := run(cfg, "opponents")
			So(code, ShouldEqual, cli.ExitUsage)

			code, _, _ = run(cfg, "opponents", "--fighter", "ghost")
			So(code, ShouldEqual, cli.ExitError)
		})
	})
}

func TestApp_Serve(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		cfg := testConfig(t.TempDir())
		writeFeatures(cfg)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When serving", func() {
			code, _, stderr := runCtx(ctx, cfg, "serve", "--addr", "127.0.0.1:0")

			Convey("Then the server shuts down cleanly", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stderr, ShouldBeEmpty)
			})
		})
	})
}
