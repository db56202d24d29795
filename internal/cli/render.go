package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/okian/fightmatch/internal/domain/types"
)

func renderRecommendation(w io.Writer, rec types.Recommendation) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# FightMatch recommended matchups")
	fmt.Fprintf(bw, "# Division: %s\n\n", rec.Label())
	for i, m := range rec.Matchups {
		fmt.Fprintf(bw, "## %d. %s vs %s\n", i+1, m.A.Row.DisplayName(), m.B.Row.DisplayName())
		fmt.Fprintf(bw, "   Rank scores: %.3f vs %.3f\n", m.A.Score, m.B.Score)
		for _, r := range m.Reasons {
			fmt.Fprintf(bw, "   - %s\n", r)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func renderOpponents(w io.Writer, view types.OpponentsView) error {
	bw := bufio.NewWriter(w)
	me := view.Fighter
	division := me.Row.Division()
	if division == "" {
		division = "unknown division"
	}
	fmt.Fprintf(bw, "# FightMatch opponents for %s\n", me.Row.DisplayName())
	fmt.Fprintf(bw, "# Division: %s (position %d, rank score %.3f)\n\n", division, me.Position, me.Score)
	for i, c := range view.Candidates {
		status := "ok"
		if !c.ConstraintsPassed {
			status = "failed " + strings.Join(c.ConstraintsFailed, ", ")
		}
		fmt.Fprintf(bw, "## %d. %s [%s]\n", i+1, c.Opponent.Row.DisplayName(), status)
		fmt.Fprintf(bw, "   Matchup score: %.3f (%s)\n", c.Score, components(c.Components))
		for _, r := range c.Reasons {
			fmt.Fprintf(bw, "   - %s\n", r)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// components renders score parts in name order.
func components(parts map[string]float64) string {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("%s=%.2f", name, parts[name])
	}
	return strings.Join(out, ", ")
}
