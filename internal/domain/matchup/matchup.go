// Package matchup scores fighter pairings and picks the best distinct ones.
package matchup

import (
	"math"
	"sort"

	dedupe "github.com/okian/fightmatch/internal/domain/dedupe"
	model "github.com/okian/fightmatch/internal/domain/model"
	scoring "github.com/okian/fightmatch/internal/domain/scoring"
)

const (
	clarityMax      = 2.0
	competitiveMax  = 1.5
	competitiveRate = 0.5

	similarActivityDays  = 180
	similarActivityBonus = 0.5
	rematchPenalty       = 2.0
	styleContrastBonus   = 0.8
	actionRate           = 0.3

	strikerMinSigPerMin = 4.0
	strikerMaxTDPer15   = 2.0
	grapplerMinTDPer15  = 2.0
	matchupPrecision    = 4
)

// Breakdown is a matchup score split by factor.
type Breakdown struct {
	RankCloseness float64
	Activity      float64
	Style         float64
	Action        float64
	Rematch       float64
}

// Total is the floored, rounded sum of the factors.
func (b Breakdown) Total() float64 {
	sum := b.RankCloseness + b.Activity + b.Style + b.Action + b.Rematch
	return math.Max(0, scoring.Round(sum, matchupPrecision))
}

// Components maps factor names to rounded values.
func (b Breakdown) Components() map[string]float64 {
	return map[string]float64{
		"rank_closeness": scoring.Round(b.RankCloseness, matchupPrecision),
		"activity":       scoring.Round(b.Activity, matchupPrecision),
		"style":          scoring.Round(b.Style, matchupPrecision),
		"action":         scoring.Round(b.Action, matchupPrecision),
		"rematch":        scoring.Round(b.Rematch, matchupPrecision),
	}
}

// Factors breaks the score of a vs b into its factors.
func Factors(a, b model.FeatureRow, rankA, rankB float64, cfg scoring.Config, recentRematch bool) Breakdown {
	var out Breakdown

	diff := math.Abs(rankA - rankB)
	if cfg.PrioritizeContenderClarity {
		out.RankCloseness = math.Max(0, clarityMax-diff)
	} else {
		out.RankCloseness = math.Max(0, competitiveMax-competitiveRate*diff)
	}

	if a.ActivityRecencyDays != nil && b.ActivityRecencyDays != nil {
		gap := *a.ActivityRecencyDays - *b.ActivityRecencyDays
		if gap < 0 {
			gap = -gap
		}
		if gap < similarActivityDays {
			out.Activity = similarActivityBonus
		}
	}

	if cfg.AvoidImmediateRematch && recentRematch {
		out.Rematch = -rematchPenalty
	}

	if (isStriker(a) && isGrappler(b)) || (isGrappler(a) && isStriker(b)) {
		out.Style = styleContrastBonus
	}

	if cfg.PrioritizeAction {
		out.Action = actionRate * (value(a.FinishRate) + value(b.FinishRate))
	}
	return out
}

// Score rates how good a vs b is as a booking. It never goes below zero.
func Score(a, b model.FeatureRow, rankA, rankB float64, cfg scoring.Config, recentRematch bool) float64 {
	return Factors(a, b, rankA, rankB, cfg, recentRematch).Total()
}

func isStriker(r model.FeatureRow) bool {
	return value(r.SigStrDiffPerMin) > strikerMinSigPerMin && value(r.TDAttemptsPer15) < strikerMaxTDPer15
}

func isGrappler(r model.FeatureRow) bool {
	return value(r.TDAttemptsPer15) > grapplerMinTDPer15
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// RecentPairs is the set of pairs that already fought recently.
type RecentPairs map[model.PairKey]struct{}

// Has reports whether x and y fought recently, in either order.
func (p RecentPairs) Has(x, y string) bool {
	_, ok := p[model.NewPairKey(x, y)]
	return ok
}

// Add records x and y as a recent pairing.
func (p RecentPairs) Add(x, y string) {
	p[model.NewPairKey(x, y)] = struct{}{}
}

// RecentPairsFromBouts collects every bout with two known corners.
func RecentPairsFromBouts(bouts []model.Bout) RecentPairs {
	out := make(RecentPairs, len(bouts))
	for _, b := range bouts {
		if b.RedFighterID == "" || b.Blue() == "" {
			continue
		}
		out.Add(b.RedFighterID, b.Blue())
	}
	return out
}

// Select scores every pair of ranked fighters and returns up to topN of
// the best, each unordered pair at most once. Equal scores keep pair order.
func Select(ranked []model.RankedFighter, topN int, cfg scoring.Config, recent RecentPairs) []model.Matchup {
	if topN <= 0 || len(ranked) < 2 {
		return []model.Matchup{}
	}
	candidates := make([]model.Matchup, 0, len(ranked)*(len(ranked)-1)/2)
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			a, b := ranked[i], ranked[j]
			candidates = append(candidates, model.Matchup{
				A:     a,
				B:     b,
				Score: Score(a.Row, b.Row, a.Score, b.Score, cfg, recent.Has(a.ID(), b.ID())),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	seen := dedupe.New()
	out := make([]model.Matchup, 0, topN)
	for _, m := range candidates {
		if seen.SeenAndRecord(m.Key().String()) {
			continue
		}
		out = append(out, m)
		if len(out) >= topN {
			break
		}
	}
	return out
}
