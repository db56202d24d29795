package features

import (
	"time"

	model "github.com/okian/fightmatch/internal/domain/model"
)

const (
	minTotalMinutes  = 0.01
	seedTotalMinutes = 0.1
	minTDAttempts    = 1.0
	per15            = 15.0
	secondsPerMinute = 60.0
)

// Build returns one feature row per registered fighter as of now, in
// registry order. Only bouts dated strictly before now count. Fighters
// without such bouts get a row with only the identity fields and a zero
// streak.
func Build(ds *model.Dataset, now time.Time) []model.FeatureRow {
	h := newHistory(ds)
	rows := make([]model.FeatureRow, 0, len(ds.Fighters))
	for _, f := range ds.Fighters {
		if f.FighterID == "" {
			continue
		}
		rows = append(rows, buildRow(f, h, now))
	}
	return rows
}

func buildRow(f model.Fighter, h history, now time.Time) model.FeatureRow {
	row := model.FeatureRow{FighterID: f.FighterID, Name: f.Name}
	if row.Name == "" {
		row.Name = f.FighterID
	}
	apps := h.before(f.FighterID, now)
	if len(apps) == 0 {
		return row
	}

	row.WeightClass = apps[0].weightClass
	row.ActivityRecencyDays = model.Ptr(wholeDays(apps[0].date, now))
	row.WinStreak = streak(apps)
	if frac, ok := winFraction(firstN(apps, recentBouts)); ok {
		row.Last5WinPct = rounded(frac)
	}

	var (
		finishes  int
		sigPerMin float64
		tdLanded  float64
		tdAtt     float64
		ctrl      float64
	)
	totalMins := seedTotalMinutes
	for _, a := range apps {
		if a.finalRoundMinutes() < finishBeforeMins {
			finishes++
		}
		totalMins += boutMinutes
		sigPerMin += float64(intOr(a.stats.SigStrLanded, 0)) / boutMinutes
		tdLanded += float64(intOr(a.stats.TDLanded, 0))
		tdAtt += float64(intOr(a.stats.TDAtt, 1))
		if a.stats.CtrlTimeSeconds != nil {
			ctrl += *a.stats.CtrlTimeSeconds
		}
	}
	n := float64(len(apps))
	row.FinishRate = rounded(float64(finishes) / n)
	row.SigStrDiffPerMin = rounded(sigPerMin / n)
	row.TDRate = rounded(tdLanded / max(minTDAttempts, tdAtt))
	row.TDAttemptsPer15 = rounded((tdLanded + tdAtt) / max(minTotalMinutes, totalMins) * per15)
	row.ControlPer15 = rounded(ctrl / max(minTotalMinutes, totalMins) * per15 * secondsPerMinute)
	row.OpponentRecentWinPctAvg = opponentQuality(apps, h)
	return row
}

// streak counts consecutive wins from the most recent bout backwards.
func streak(apps []appearance) int {
	n := 0
	for _, a := range apps {
		if !a.won() {
			break
		}
		n++
	}
	return n
}

// opponentQuality averages, over the last five bouts, each opponent's
// last-five win fraction going into that bout.
func opponentQuality(apps []appearance, h history) *float64 {
	var sum float64
	var n int
	for _, a := range firstN(apps, recentBouts) {
		if a.opponentID == "" {
			continue
		}
		frac, ok := winFraction(firstN(h.before(a.opponentID, a.date), recentBouts))
		if !ok {
			continue
		}
		sum += frac
		n++
	}
	if n == 0 {
		return nil
	}
	return rounded(sum / float64(n))
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
