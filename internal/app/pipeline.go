package service

import (
	"context"
	"fmt"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/scrape"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/internal/domain/features"
	"github.com/okian/fightmatch/pkg/logger"
)

// Scrape downloads every event dated on or after since, and its fight
// pages, into rawDir.
func (s *Service) Scrape(ctx context.Context, since, rawDir string) (scrape.ScrapeReport, error) {
	if err := scrape.ValidateSince(since); err != nil {
		return scrape.ScrapeReport{}, err
	}
	crawler := scrape.NewCrawler(s.sourceFetcher(), s.parser(), s.log.Named("crawler"))
	report, err := crawler.ScrapeSince(ctx, since, rawDir)
	if err != nil {
		return report, fmt.Errorf("scrape since %s: %w", since, err)
	}
	s.log.Info(ctx, "scrape finished",
		logger.String("since", since),
		logger.Int("events", report.EventsSaved),
		logger.Int("eventsFailed", report.EventsFailed),
		logger.Int("fights", report.FightsSaved),
		logger.Int("fightsFailed", report.FightsFailed),
	)
	return report, nil
}

// BuildDataset parses the raw pages under rawDir and writes the
// normalized collections to outDir.
func (s *Service) BuildDataset(ctx context.Context, rawDir, outDir string) (*model.Dataset, error) {
	ds, err := s.builder.Build(ctx, rawDir)
	if err != nil {
		return nil, err
	}
	if err := s.datasets.Save(ctx, outDir, ds); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "dataset written",
		logger.String("dir", outDir),
		logger.Int("fighters", len(ds.Fighters)),
		logger.Int("events", len(ds.Events)),
		logger.Int("bouts", len(ds.Bouts)),
		logger.Int("stats", len(ds.Stats)),
	)
	return ds, nil
}

// BuildFeatures computes one feature row per fighter as of now and writes
// the table to outPath.
func (s *Service) BuildFeatures(ctx context.Context, processedDir, outPath string) ([]model.FeatureRow, error) {
	ds, err := s.datasets.Load(ctx, processedDir)
	if err != nil {
		return nil, err
	}
	rows := features.Build(ds, s.now())
	if err := dataset.SaveFeatures(outPath, rows); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "features written", logger.String("path", outPath), logger.Int("rows", len(rows)))
	return rows, nil
}

// BuildSnapshots writes the per-bout training table to outPath.
func (s *Service) BuildSnapshots(ctx context.Context, processedDir, outPath string) ([]model.Snapshot, error) {
	ds, err := s.datasets.Load(ctx, processedDir)
	if err != nil {
		return nil, err
	}
	rows := features.Snapshots(ds)
	if err := dataset.SaveSnapshots(outPath, rows); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "snapshots written", logger.String("path", outPath), logger.Int("rows", len(rows)))
	return rows, nil
}
