// Package scoring computes per-fighter rank scores and division rankings.
package scoring

import (
	"math"
	"slices"
	"sort"
	"strings"

	model "github.com/okian/fightmatch/internal/domain/model"
)

// Default ranking constants.
const (
	DefaultHalfLifeDays = 365.0
	DefaultTopN         = 15

	missingRecencyDays = 999.0
	neutralFraction    = 0.5

	streakWeight     = 2.0
	last5Weight      = 1.5
	oppQualityWeight = 1.0
	actionFinish     = 1.5
	calmFinish       = 0.5
	staleBonus       = 0.5
	scorePrecision   = 6
)

// Config carries the business knobs shared by ranking and matchmaking.
type Config struct {
	PrioritizeContenderClarity bool
	PrioritizeAction           bool
	AllowShortNotice           bool
	AvoidImmediateRematch      bool
	DecayHalfLifeDays          float64
}

// DefaultConfig favors clear contenders and avoids immediate rematches.
func DefaultConfig() Config {
	return Config{
		PrioritizeContenderClarity: true,
		AvoidImmediateRematch:      true,
		DecayHalfLifeDays:          DefaultHalfLifeDays,
	}
}

// RankScore is the decayed weighted score of one feature row. ref is an
// optional recency window in days: fighters outside it get half the score
// unless short notice bookings are allowed.
func RankScore(row model.FeatureRow, cfg Config, ref *float64) float64 {
	half := cfg.DecayHalfLifeDays
	if half <= 0 {
		half = DefaultHalfLifeDays
	}
	recency := missingRecencyDays
	if row.ActivityRecencyDays != nil {
		recency = float64(*row.ActivityRecencyDays)
	}
	decay := math.Pow(2, -recency/half)

	finishWeight := calmFinish
	if cfg.PrioritizeAction {
		finishWeight = actionFinish
	}
	base := streakWeight*float64(row.WinStreak) +
		last5Weight*orDefault(row.Last5WinPct, neutralFraction) +
		oppQualityWeight*orDefault(row.OpponentRecentWinPctAvg, neutralFraction) +
		finishWeight*orDefault(row.FinishRate, 0)

	bonus := 1.0
	if ref != nil && recency > *ref && !cfg.AllowShortNotice {
		bonus = staleBonus
	}
	return Round(decay*base*bonus, scorePrecision)
}

// NormalizeDivision makes weight class labels comparable.
func NormalizeDivision(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Divisions lists the distinct non-empty weight classes of rows, sorted.
// Labels that differ only in case or spacing are listed once, first
// spelling wins.
func Divisions(rows []model.FeatureRow) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		key := NormalizeDivision(r.Division())
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(r.Division()))
	}
	slices.Sort(out)
	return out
}

// Ranker ranks feature rows inside a division.
type Ranker struct {
	cfg  Config
	ref  *float64
	topN int
}

// NewRanker creates a ranker with DefaultConfig and DefaultTopN.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		cfg:  DefaultConfig(),
		topN: DefaultTopN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the knobs the ranker scores with.
func (r *Ranker) Config() Config { return r.cfg }

// Score scores a single row with the ranker's settings.
func (r *Ranker) Score(row model.FeatureRow) float64 {
	return RankScore(row, r.cfg, r.ref)
}

// RankByDivision returns the top rows of division by descending score.
// An empty division ranks every row. Ties keep input order.
func (r *Ranker) RankByDivision(rows []model.FeatureRow, division string) []model.RankedFighter {
	target := NormalizeDivision(division)
	ranked := make([]model.RankedFighter, 0, len(rows))
	for _, row := range rows {
		if target != "" && NormalizeDivision(row.Division()) != target {
			continue
		}
		ranked = append(ranked, model.RankedFighter{Row: row, Score: r.Score(row)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if r.topN > 0 && len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
