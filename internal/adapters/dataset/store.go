package dataset

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/logger"
)

// Processed file names.
const (
	FightersFile = "fighters.json"
	EventsFile   = "events.json"
	BoutsFile    = "bouts.json"
	StatsFile    = "stats.jsonl"

	dirPerm  = 0o755
	filePerm = 0o644

	maxLineBytes = 1 << 20
)

// Store reads and writes the processed dataset directory.
type Store struct {
	log logger.Logger
}

// NewStore creates a store.
func NewStore(opts ...Option) *Store {
	return &Store{log: apply(opts).log}
}

// Save writes the three JSON arrays and the stats lines into dir.
func (s *Store) Save(ctx context.Context, dir string, ds *model.Dataset) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := writeArray(filepath.Join(dir, FightersFile), nonNil(ds.Fighters)); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, EventsFile), nonNil(ds.Events)); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, BoutsFile), nonNil(ds.Bouts)); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, StatsFile), ds.Stats); err != nil {
		return err
	}
	s.log.Info(ctx, "dataset saved", logger.String("dir", dir))
	return nil
}

// Load reads a directory written by Save. Missing files are empty collections.
func (s *Store) Load(ctx context.Context, dir string) (*model.Dataset, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("processed dir %s: %w", dir, errors.Join(ErrNoData, err))
	}
	ds := &model.Dataset{}
	if err := readArray(filepath.Join(dir, FightersFile), &ds.Fighters); err != nil {
		return nil, err
	}
	if err := readArray(filepath.Join(dir, EventsFile), &ds.Events); err != nil {
		return nil, err
	}
	if err := readArray(filepath.Join(dir, BoutsFile), &ds.Bouts); err != nil {
		return nil, err
	}
	stats, err := readLines(filepath.Join(dir, StatsFile))
	if err != nil {
		return nil, err
	}
	ds.Stats = stats
	recordSizes(ds)
	s.log.Debug(ctx, "dataset loaded", logger.String("dir", dir), logger.Int("bouts", len(ds.Bouts)))
	return ds, nil
}

// LoadBouts reads only bouts.json. A missing file gives no bouts.
func (s *Store) LoadBouts(dir string) ([]model.Bout, error) {
	var bouts []model.Bout
	if err := readArray(filepath.Join(dir, BoutsFile), &bouts); err != nil {
		return nil, err
	}
	return bouts, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func writeArray(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeLines(path string, stats []model.FightStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range stats {
		if err := enc.Encode(stats[i]); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode %s line %d: %w", filepath.Base(path), i+1, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readArray[T any](path string, out *[]T) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		*out = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, filepath.Base(path), err)
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}

func readLines(path string) ([]model.FightStats, error) {
	out := []model.FightStats{}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var s model.FightStats
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrCorrupt, filepath.Base(path), line, err)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
