// Package dataset turns raw pages into the normalized dataset and persists
// it together with the derived tables.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/fightmatch/internal/adapters/scrape"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

// Builder parses a raw page directory into a Dataset.
type Builder struct {
	parser *scrape.Parser
	log    logger.Logger
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	o := apply(opts)
	return &Builder{parser: o.parser, log: o.log}
}

// Build reads <rawDir>/ufcstats/events/*.html in name order and, for every
// fight linked from an event, <rawDir>/ufcstats/fights/<bout_id>.html when
// it exists. A missing rawDir is ErrNoData; a missing events directory
// gives an empty dataset.
func (b *Builder) Build(ctx context.Context, rawDir string) (*model.Dataset, error) {
	if _, err := os.Stat(rawDir); err != nil {
		return nil, fmt.Errorf("raw dir %s: %w", rawDir, errors.Join(ErrNoData, err))
	}
	eventsDir := filepath.Join(rawDir, scrape.SourceDir, scrape.EventsDir)
	fightsDir := filepath.Join(rawDir, scrape.SourceDir, scrape.FightsDir)

	paths, err := filepath.Glob(filepath.Join(eventsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sort.Strings(paths)

	acc := newAccumulator()
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := os.ReadFile(p)
		if err != nil {
			b.log.Warn(ctx, "skip unreadable event page", logger.String("path", p), logger.Error(err))
			continue
		}
		eventID := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		page := b.parser.ParseEventPage(html, eventID)
		acc.addEvent(page.Event)
		for _, bout := range page.Bouts {
			acc.upsertBout(bout)
		}

		for _, fl := range page.FightLinks {
			fp := filepath.Join(fightsDir, fl.BoutID+".html")
			body, err := os.ReadFile(fp)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					b.log.Debug(ctx, "skip unreadable fight page", logger.String("path", fp), logger.Error(err))
				}
				continue
			}
			acc.addDetails(b.parser.ParseFightDetails(body, fl.BoutID))
		}
	}

	ds := acc.dataset()
	recordSizes(ds)
	b.log.Info(ctx, "dataset built",
		logger.Int("fighters", len(ds.Fighters)),
		logger.Int("events", len(ds.Events)),
		logger.Int("bouts", len(ds.Bouts)),
		logger.Int("stats", len(ds.Stats)),
	)
	return ds, nil
}

type statKey struct {
	boutID string
	corner model.Corner
}

// accumulator keeps first-seen order for every collection.
type accumulator struct {
	fighters   []model.Fighter
	fighterIdx map[string]int
	events     []model.Event
	eventSeen  map[string]struct{}
	bouts      []model.Bout
	boutIdx    map[string]int
	stats      []model.FightStats
	statIdx    map[statKey]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		fighterIdx: map[string]int{},
		eventSeen:  map[string]struct{}{},
		boutIdx:    map[string]int{},
		statIdx:    map[statKey]int{},
	}
}

// registerFighter adds id with its id as name. A non-empty name replaces
// whatever was known.
func (a *accumulator) registerFighter(id, name string) {
	if id == "" {
		return
	}
	i, ok := a.fighterIdx[id]
	if !ok {
		a.fighterIdx[id] = len(a.fighters)
		a.fighters = append(a.fighters, model.Fighter{FighterID: id, Name: id})
		i = len(a.fighters) - 1
	}
	if name != "" {
		a.fighters[i].Name = name
	}
}

func (a *accumulator) addEvent(e model.Event) {
	if e.EventID == "" {
		return
	}
	if _, dup := a.eventSeen[e.EventID]; dup {
		return
	}
	a.eventSeen[e.EventID] = struct{}{}
	if e.Date != nil {
		e.Date = model.Ptr(model.NormalizeDate(*e.Date))
	}
	a.events = append(a.events, e)
}

func (a *accumulator) upsertBout(b model.Bout) {
	a.registerFighter(b.RedFighterID, "")
	a.registerFighter(b.Blue(), "")
	if i, ok := a.boutIdx[b.BoutID]; ok {
		a.bouts[i] = b
		return
	}
	a.boutIdx[b.BoutID] = len(a.bouts)
	a.bouts = append(a.bouts, b)
}

func (a *accumulator) addDetails(d scrape.FightDetails) {
	for _, ref := range d.Fighters {
		a.registerFighter(ref.FighterID, ref.Name)
	}
	for _, s := range []model.FightStats{d.Red, d.Blue} {
		if s.FighterID == "" {
			continue
		}
		k := statKey{boutID: s.BoutID, corner: s.Corner}
		if i, ok := a.statIdx[k]; ok {
			a.stats[i] = s
			continue
		}
		a.statIdx[k] = len(a.stats)
		a.stats = append(a.stats, s)
	}
}

func (a *accumulator) dataset() *model.Dataset {
	ds := &model.Dataset{
		Fighters: a.fighters,
		Events:   a.events,
		Bouts:    a.bouts,
		Stats:    a.stats,
	}
	if ds.Fighters == nil {
		ds.Fighters = []model.Fighter{}
	}
	if ds.Events == nil {
		ds.Events = []model.Event{}
	}
	if ds.Bouts == nil {
		ds.Bouts = []model.Bout{}
	}
	if ds.Stats == nil {
		ds.Stats = []model.FightStats{}
	}
	return ds
}

func recordSizes(ds *model.Dataset) {
	metrics.UpdateDatasetRecords("fighters", len(ds.Fighters))
	metrics.UpdateDatasetRecords("events", len(ds.Events))
	metrics.UpdateDatasetRecords("bouts", len(ds.Bouts))
	metrics.UpdateDatasetRecords("stats", len(ds.Stats))
}
