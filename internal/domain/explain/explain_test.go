package explain_test

import (
	"testing"

	explain "github.com/okian/fightmatch/internal/domain/explain"
	model "github.com/okian/fightmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExplain(t *testing.T) {
	Convey("Given two active contenders on streaks", t, func() {
		a := model.FeatureRow{
			FighterID:               "f1",
			WinStreak:               3,
			ActivityRecencyDays:     model.Ptr(60),
			OpponentRecentWinPctAvg: model.Ptr(0.6),
			SigStrDiffPerMin:        model.Ptr(5.3),
			TDAttemptsPer15:         model.Ptr(0.5),
		}
		b := model.FeatureRow{
			FighterID:           "f2",
			WinStreak:           1,
			ActivityRecencyDays: model.Ptr(120),
			TDAttemptsPer15:     model.Ptr(3.0),
		}

		Convey("When positions are known", func() {
			reasons := explain.Explain(a, b, 4.5, 4.25, &explain.Positions{A: 1, B: 3})

			Convey("Then every reason appears in order", func() {
				So(reasons, ShouldResemble, []string{
					"Both top-3 by rank score, within 0.25 points",
					"Fighter A on 3-fight streak; Fighter B on 1-fight streak",
					"Opponent quality proxy: A 0.60, B N/A in last fights",
					"Striking/grappling mix: A 5.3 sig/min, 0.5 TD att/15; B 0.0 sig/min, 3.0 TD att/15",
					"Both active within last 180 days (good booking probability proxy)",
				})
			})
		})

		Convey("When positions are unknown", func() {
			reasons := explain.Explain(a, b, 4.5, 4.25, nil)

			Convey("Then raw scores are quoted", func() {
				So(reasons[0], ShouldEqual, "Rank scores within 0.25 points (4.50 vs 4.25)")
			})
		})

		Convey("When one fighter has been away a long time", func() {
			b.ActivityRecencyDays = model.Ptr(400)
			reasons := explain.Explain(a, b, 4.5, 4.25, nil)

			Convey("Then recency is spelled out", func() {
				So(reasons[len(reasons)-1], ShouldEqual, "Last fight recency: A 60 days, B 400 days")
			})
		})
	})

	Convey("Given two fighters with almost no history", t, func() {
		a := model.FeatureRow{FighterID: "x"}
		b := model.FeatureRow{FighterID: "y", ActivityRecencyDays: model.Ptr(30)}

		reasons := explain.Explain(a, b, 0, 0, nil)

		Convey("Then there are still three reasons", func() {
			So(reasons, ShouldHaveLength, 3)
			So(reasons[1], ShouldStartWith, "Striking/grappling mix")
			So(reasons[2], ShouldEqual, "Last fight recency: A unknown, B 30 days")
		})
	})
}
