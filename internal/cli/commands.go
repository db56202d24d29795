package cli

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	service "github.com/okian/fightmatch/internal/app"
	"github.com/okian/fightmatch/internal/domain/scoring"
)

const (
	defaultSince  = "2020-01-01"
	snapshotsFile = "snapshots.csv"
)

func (a *App) scrape(ctx context.Context, args []string) error {
	fs := a.flags("scrape")
	since := fs.String("since", defaultSince, "Earliest event date, YYYY-MM-DD")
	out := fs.String("out", a.cfg.RawDir, "Raw output dir")
	if err := parse(fs, args); err != nil {
		return err
	}

	report, err := a.newService().Scrape(ctx, *since, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "events: found %d, saved %d, failed %d\n", report.EventsFound, report.EventsSaved, report.EventsFailed)
	fmt.Fprintf(a.stdout, "fights: saved %d, failed %d\n", report.FightsSaved, report.FightsFailed)
	return nil
}

func (a *App) buildDataset(ctx context.Context, args []string) error {
	fs := a.flags("build-dataset")
	raw := fs.String("raw", a.cfg.RawDir, "Raw dir")
	out := fs.String("out", a.cfg.ProcessedDir, "Processed output dir")
	if err := parse(fs, args); err != nil {
		return err
	}

	ds, err := a.newService().BuildDataset(ctx, *raw, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d fighters, %d events, %d bouts, %d stats to %s\n",
		len(ds.Fighters), len(ds.Events), len(ds.Bouts), len(ds.Stats), *out)
	return nil
}

func (a *App) features(ctx context.Context, args []string) error {
	fs := a.flags("features")
	in := fs.String("in", a.cfg.ProcessedDir, "Processed dir")
	out := fs.String("out", a.cfg.FeaturesPath(), "Output CSV path")
	if err := parse(fs, args); err != nil {
		return err
	}

	rows, err := a.newService().BuildFeatures(ctx, *in, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d feature rows to %s\n", len(rows), *out)
	return nil
}

func (a *App) snapshots(ctx context.Context, args []string) error {
	fs := a.flags("snapshots")
	in := fs.String("in", a.cfg.ProcessedDir, "Processed dir")
	out := fs.String("out", filepath.Join(a.cfg.FeaturesDir, snapshotsFile), "Output CSV path")
	if err := parse(fs, args); err != nil {
		return err
	}

	rows, err := a.newService().BuildSnapshots(ctx, *in, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d snapshot rows to %s\n", len(rows), *out)
	return nil
}

// knobs binds the matchmaking switches, including the --no- forms, on fs.
type knobs struct {
	clarity, noClarity *bool
	action             *bool
	shortNotice        *bool
	rematch, noRematch *bool
	halfLife           *float64
}

func bindKnobs(fs *flag.FlagSet, base scoring.Config) knobs {
	return knobs{
		clarity:     fs.Bool("prioritize-contender-clarity", base.PrioritizeContenderClarity, "Favor pairs with close rank scores"),
		noClarity:   fs.Bool("no-prioritize-contender-clarity", false, "Disable --prioritize-contender-clarity"),
		action:      fs.Bool("prioritize-action", base.PrioritizeAction, "Favor finishers"),
		shortNotice: fs.Bool("allow-short-notice", base.AllowShortNotice, "Do not penalize long layoffs"),
		rematch:     fs.Bool("avoid-rematch", base.AvoidImmediateRematch, "Penalize pairs that already fought"),
		noRematch:   fs.Bool("no-avoid-rematch", false, "Disable --avoid-rematch"),
		halfLife:    fs.Float64("half-life", base.DecayHalfLifeDays, "Activity decay half-life in days"),
	}
}

func (k knobs) config() scoring.Config {
	return scoring.Config{
		PrioritizeContenderClarity: *k.clarity && !*k.noClarity,
		PrioritizeAction:           *k.action,
		AllowShortNotice:           *k.shortNotice,
		AvoidImmediateRematch:      *k.rematch && !*k.noRematch,
		DecayHalfLifeDays:          *k.halfLife,
	}
}

func (a *App) recommend(ctx context.Context, args []string) error {
	svc := a.newService()
	fs := a.flags("recommend")
	division := fs.String("division", "", "Weight class, e.g. Lightweight; empty ranks all")
	top := fs.Int("top", service.DefaultTop, "Number of matchups")
	featuresPath := fs.String("features", a.cfg.FeaturesPath(), "Features CSV")
	processed := fs.String("processed", a.cfg.ProcessedDir, "Processed dir, for recent bouts")
	k := bindKnobs(fs, svc.ScoringConfig())
	if err := parse(fs, args); err != nil {
		return err
	}

	rec, err := svc.Recommend(ctx, service.RecommendRequest{
		Division:     *division,
		Top:          *top,
		FeaturesPath: *featuresPath,
		ProcessedDir: *processed,
		Scoring:      k.config(),
	})
	if err != nil {
		return err
	}
	return renderRecommendation(a.stdout, rec)
}

func (a *App) opponents(ctx context.Context, args []string) error {
	svc := a.newService()
	fs := a.flags("opponents")
	fighter := fs.String("fighter", "", "Fighter id")
	top := fs.Int("top", service.DefaultTop, "Number of candidates")
	featuresPath := fs.String("features", a.cfg.FeaturesPath(), "Features CSV")
	processed := fs.String("processed", a.cfg.ProcessedDir, "Processed dir, for recent bouts")
	k := bindKnobs(fs, svc.ScoringConfig())
	if err := parse(fs, args); err != nil {
		return err
	}
	if *fighter == "" {
		fmt.Fprintln(a.stderr, "--fighter is required")
		return errUsage
	}

	view, err := svc.FighterOpponents(ctx, service.OpponentsRequest{
		FighterID:    *fighter,
		Top:          *top,
		FeaturesPath: *featuresPath,
		ProcessedDir: *processed,
		Scoring:      k.config(),
	})
	if err != nil {
		return err
	}
	return renderOpponents(a.stdout, view)
}
