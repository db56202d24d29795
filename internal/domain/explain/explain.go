// Package explain renders short human-readable reasons for a matchup.
package explain

import (
	"fmt"
	"math"

	model "github.com/okian/fightmatch/internal/domain/model"
)

const (
	maxReasons     = 6
	streakMention  = 2
	activeWithDays = 180
)

// Positions are the 1-based division ranks of the two fighters.
type Positions struct {
	A int
	B int
}

// Explain returns between three and six reasons for booking a vs b, in a
// fixed order. pos may be nil when ranking positions are unknown.
func Explain(a, b model.FeatureRow, rankA, rankB float64, pos *Positions) []string {
	reasons := make([]string, 0, maxReasons)

	diff := math.Abs(rankA - rankB)
	if pos != nil {
		reasons = append(reasons, fmt.Sprintf("Both top-%d by rank score, within %.2f points", max(pos.A, pos.B), diff))
	} else {
		reasons = append(reasons, fmt.Sprintf("Rank scores within %.2f points (%.2f vs %.2f)", diff, rankA, rankB))
	}

	if a.WinStreak >= streakMention || b.WinStreak >= streakMention {
		reasons = append(reasons, fmt.Sprintf("Fighter A on %d-fight streak; Fighter B on %d-fight streak", a.WinStreak, b.WinStreak))
	}

	if a.OpponentRecentWinPctAvg != nil || b.OpponentRecentWinPctAvg != nil {
		reasons = append(reasons, fmt.Sprintf("Opponent quality proxy: A %s, B %s in last fights",
			fraction(a.OpponentRecentWinPctAvg), fraction(b.OpponentRecentWinPctAvg)))
	}

	reasons = append(reasons, fmt.Sprintf("Striking/grappling mix: A %.1f sig/min, %.1f TD att/15; B %.1f sig/min, %.1f TD att/15",
		value(a.SigStrDiffPerMin), value(a.TDAttemptsPer15), value(b.SigStrDiffPerMin), value(b.TDAttemptsPer15)))

	reasons = append(reasons, activity(a.ActivityRecencyDays, b.ActivityRecencyDays))

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}

// activity always yields a line so that every explanation has at least
// three reasons, even when one side's recency is unknown.
func activity(a, b *int) string {
	if a != nil && b != nil && max(*a, *b) <= activeWithDays {
		return "Both active within last 180 days (good booking probability proxy)"
	}
	return fmt.Sprintf("Last fight recency: A %s, B %s", days(a), days(b))
}

func days(v *int) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d days", *v)
}

func fraction(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
