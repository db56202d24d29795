package matchup

import (
	"fmt"
	"sort"

	model "github.com/okian/fightmatch/internal/domain/model"
	scoring "github.com/okian/fightmatch/internal/domain/scoring"
)

// DefaultMaxInactiveDays is the longest layoff an opponent may have.
const DefaultMaxInactiveDays = 400

// Constraint failure codes.
const (
	FailNoRecentActivity = "no_recent_activity"
	failInactiveFormat   = "inactive_over_%d_days"
)

// OpponentQuery describes who needs an opponent and from which pool.
type OpponentQuery struct {
	Fighter         model.RankedFighter
	Pool            []model.RankedFighter
	Recent          RecentPairs
	MaxInactiveDays int
	Limit           int
}

// Opponents rates every pool member of the fighter's division as an
// opponent. Candidates meeting the activity constraint come first, then
// higher scores. A non-positive limit returns all.
func Opponents(q OpponentQuery, cfg scoring.Config) []model.OpponentCandidate {
	maxInactive := q.MaxInactiveDays
	if maxInactive <= 0 {
		maxInactive = DefaultMaxInactiveDays
	}
	division := scoring.NormalizeDivision(q.Fighter.Row.Division())

	out := make([]model.OpponentCandidate, 0, len(q.Pool))
	for _, opp := range q.Pool {
		if opp.ID() == q.Fighter.ID() {
			continue
		}
		if scoring.NormalizeDivision(opp.Row.Division()) != division {
			continue
		}
		breakdown := Factors(q.Fighter.Row, opp.Row, q.Fighter.Score, opp.Score, cfg, q.Recent.Has(q.Fighter.ID(), opp.ID()))
		failed := checkConstraints(opp.Row, maxInactive)
		out = append(out, model.OpponentCandidate{
			Opponent:          opp,
			Score:             breakdown.Total(),
			ConstraintsPassed: len(failed) == 0,
			ConstraintsFailed: failed,
			Components:        breakdown.Components(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ConstraintsPassed != out[j].ConstraintsPassed {
			return out[i].ConstraintsPassed
		}
		return out[i].Score > out[j].Score
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func checkConstraints(row model.FeatureRow, maxInactive int) []string {
	failed := []string{}
	switch {
	case row.ActivityRecencyDays == nil:
		failed = append(failed, FailNoRecentActivity)
	case *row.ActivityRecencyDays > maxInactive:
		failed = append(failed, fmt.Sprintf(failInactiveFormat, maxInactive))
	}
	return failed
}
