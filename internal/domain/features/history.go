// Package features derives per-fighter rolling statistics from a dataset.
package features

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	model "github.com/okian/fightmatch/internal/domain/model"
)

const (
	boutMinutes      = 5.0
	finishBeforeMins = 4.0
	recentBouts      = 5
	featurePrecision = 4
)

var clockRe = regexp.MustCompile(`^(\d+):(\d{1,2})`)

// appearance is one fighter's side of a dated bout.
type appearance struct {
	boutID      string
	opponentID  string
	corner      model.Corner
	date        time.Time
	winner      model.Winner
	weightClass *string
	method      *string
	clock       *string
	stats       model.FightStats
}

func (a appearance) won() bool { return a.winner.Won(a.corner) }

// finalRoundMinutes reads the stoppage clock. Bouts without a readable
// clock are treated as having gone the full round.
func (a appearance) finalRoundMinutes() float64 {
	if a.clock == nil {
		return boutMinutes
	}
	m := clockRe.FindStringSubmatch(strings.TrimSpace(*a.clock))
	if m == nil {
		return boutMinutes
	}
	mins, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	return float64(mins) + float64(secs)/60
}

// stoppage reports whether the method names a knockout or submission.
func (a appearance) stoppage() bool {
	if a.method == nil {
		return false
	}
	m := strings.ToUpper(*a.method)
	return strings.Contains(m, "KO") || strings.Contains(m, "SUB")
}

// history maps fighter ids to their dated appearances, most recent first.
// Bouts on the same date keep dataset order.
type history map[string][]appearance

func newHistory(ds *model.Dataset) history {
	dates := ds.EventDates()
	stats := ds.StatsByBout()
	h := make(history)
	for _, b := range ds.Bouts {
		d, ok := dates[b.EventID]
		if !ok {
			continue
		}
		sides := [...]struct {
			id, opp string
			corner  model.Corner
		}{
			{b.RedFighterID, b.Blue(), model.CornerRed},
			{b.Blue(), b.RedFighterID, model.CornerBlue},
		}
		for _, s := range sides {
			if s.id == "" {
				continue
			}
			h[s.id] = append(h[s.id], appearance{
				boutID:      b.BoutID,
				opponentID:  s.opp,
				corner:      s.corner,
				date:        d,
				winner:      b.Winner,
				weightClass: b.WeightClass,
				method:      b.Method,
				clock:       b.Time,
				stats:       stats[b.BoutID][s.corner],
			})
		}
	}
	for id := range h {
		apps := h[id]
		sort.SliceStable(apps, func(i, j int) bool { return apps[i].date.After(apps[j].date) })
	}
	return h
}

// before returns the appearances of id strictly before t, most recent first.
func (h history) before(id string, t time.Time) []appearance {
	apps := h[id]
	i := sort.Search(len(apps), func(i int) bool { return apps[i].date.Before(t) })
	return apps[i:]
}

func winFraction(apps []appearance) (float64, bool) {
	if len(apps) == 0 {
		return 0, false
	}
	wins := 0
	for _, a := range apps {
		if a.won() {
			wins++
		}
	}
	return float64(wins) / float64(len(apps)), true
}

func firstN(apps []appearance, n int) []appearance {
	if len(apps) > n {
		return apps[:n]
	}
	return apps
}

func wholeDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func rounded(v float64) *float64 {
	p := math.Pow(10, featurePrecision)
	r := math.Round(v*p) / p
	return &r
}
