package features

import (
	model "github.com/okian/fightmatch/internal/domain/model"
)

const (
	daysIn12Months = 365
	daysIn24Months = 730
)

// Snapshots builds one training row per fighter per dated bout, using only
// bouts strictly before that date. Draws and no contests are skipped.
func Snapshots(ds *model.Dataset) []model.Snapshot {
	h := newHistory(ds)
	dates := ds.EventDates()
	out := make([]model.Snapshot, 0, 2*len(ds.Bouts))
	for _, b := range ds.Bouts {
		d, ok := dates[b.EventID]
		if !ok || b.Winner == model.WinnerDraw || b.Winner == model.WinnerNC {
			continue
		}
		for _, corner := range []model.Corner{model.CornerRed, model.CornerBlue} {
			id, opp := b.RedFighterID, b.Blue()
			if corner == model.CornerBlue {
				id, opp = opp, id
			}
			if id == "" || opp == "" {
				continue
			}
			prior := h.before(id, d)
			oppPrior := h.before(opp, d)

			s := model.Snapshot{
				BoutID:                  b.BoutID,
				FighterID:               id,
				OpponentID:              opp,
				SnapshotDate:            d.Format(model.ISODate),
				TotalFightsToDate:       len(prior),
				WinStreak:               decisiveStreak(prior),
				OpponentWinStreakToDate: decisiveStreak(oppPrior),
				LabelWin:                b.Winner.Won(corner),
			}
			if len(prior) > 0 {
				s.DaysSinceLastFight = model.Ptr(wholeDays(prior[0].date, d))
			}
			for _, a := range prior {
				age := wholeDays(a.date, d)
				if age <= daysIn12Months {
					s.FightsLast12m++
				}
				if age <= daysIn24Months {
					s.FightsLast24m++
				}
			}
			if frac, ok := winFraction(firstN(decisive(prior), recentBouts)); ok {
				s.LastNResultsSummary = rounded(frac)
			}
			if len(oppPrior) > 0 {
				wins := 0
				for _, a := range oppPrior {
					if a.won() {
						wins++
					}
				}
				s.OpponentWinRateToDate = rounded(float64(wins) / float64(len(oppPrior)))
			}
			if len(prior) > 0 {
				finishes := 0
				for _, a := range prior {
					if a.stoppage() {
						finishes++
					}
				}
				s.FighterFinishRateToDate = rounded(float64(finishes) / float64(len(prior)))
			}
			out = append(out, s)
		}
	}
	return out
}

// decisive keeps bouts that ended with a winner.
func decisive(apps []appearance) []appearance {
	out := make([]appearance, 0, len(apps))
	for _, a := range apps {
		if a.winner.Decisive() {
			out = append(out, a)
		}
	}
	return out
}

// decisiveStreak counts recent consecutive wins, ignoring bouts without a winner.
func decisiveStreak(apps []appearance) int {
	return streak(decisive(apps))
}
