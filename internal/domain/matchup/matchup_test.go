package matchup_test

import (
	"testing"

	matchup "github.com/okian/fightmatch/internal/domain/matchup"
	model "github.com/okian/fightmatch/internal/domain/model"
	scoring "github.com/okian/fightmatch/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func ranked(id string, score float64) model.RankedFighter {
	return model.RankedFighter{Row: model.FeatureRow{FighterID: id, Name: id}, Score: score}
}

func TestScore(t *testing.T) {
	convey.Convey("Given a striker and a grappler", t, func() {
		striker := model.FeatureRow{
			FighterID:           "s1",
			ActivityRecencyDays: model.Ptr(30),
			SigStrDiffPerMin:    model.Ptr(5.0),
			TDAttemptsPer15:     model.Ptr(1.0),
			FinishRate:          model.Ptr(0.5),
		}
		grappler := model.FeatureRow{
			FighterID:           "g1",
			ActivityRecencyDays: model.Ptr(60),
			TDAttemptsPer15:     model.Ptr(3.0),
			FinishRate:          model.Ptr(0.5),
		}
		cfg := scoring.DefaultConfig()

		convey.Convey("When scored with defaults", func() {
			convey.Convey("Then closeness, similar activity and contrast add up in either order", func() {
				convey.So(matchup.Score(striker, grappler, 4.0, 3.5, cfg, false), convey.ShouldEqual, 2.8)
				convey.So(matchup.Score(grappler, striker, 3.5, 4.0, cfg, false), convey.ShouldEqual, 2.8)
			})
		})

		convey.Convey("When contender clarity is off", func() {
			cfg.PrioritizeContenderClarity = false

			convey.Convey("Then the gentler closeness term applies", func() {
				convey.So(matchup.Score(striker, grappler, 4.0, 3.5, cfg, false), convey.ShouldEqual, 2.55)
			})
		})

		convey.Convey("When action is prioritized", func() {
			cfg.PrioritizeAction = true

			convey.Convey("Then finish rates add a bonus", func() {
				convey.So(matchup.Score(striker, grappler, 4.0, 3.5, cfg, false), convey.ShouldEqual, 3.1)
			})
		})

		convey.Convey("When they fought recently", func() {
			convey.Convey("Then the rematch is penalized only when avoided", func() {
				convey.So(matchup.Score(striker, grappler, 4.0, 3.5, cfg, true), convey.ShouldEqual, 0.8)
				cfg.AvoidImmediateRematch = false
				convey.So(matchup.Score(striker, grappler, 4.0, 3.5, cfg, true), convey.ShouldEqual, 2.8)
			})
		})

		convey.Convey("When the ranks are far apart and it is a rematch", func() {
			convey.Convey("Then the score is floored at zero", func() {
				convey.So(matchup.Score(striker, grappler, 10, 0, cfg, true), convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When a recency is unknown", func() {
			grappler.ActivityRecencyDays = nil

			convey.Convey("Then there is no activity bonus", func() {
				b := matchup.Factors(striker, grappler, 4.0, 3.5, cfg, false)
				convey.So(b.Activity, convey.ShouldEqual, 0.0)
				convey.So(b.Components()["style"], convey.ShouldEqual, 0.8)
				convey.So(b.Total(), convey.ShouldEqual, 2.3)
			})
		})
	})
}

func TestSelect(t *testing.T) {
	convey.Convey("Given three ranked fighters", t, func() {
		pool := []model.RankedFighter{ranked("r1", 3.0), ranked("r2", 2.9), ranked("r3", 1.0)}
		cfg := scoring.DefaultConfig()

		convey.Convey("When selecting two matchups", func() {
			out := matchup.Select(pool, 2, cfg, matchup.RecentPairs{})

			convey.Convey("Then the closest pairs win", func() {
				convey.So(out, convey.ShouldHaveLength, 2)
				convey.So(out[0].Key().String(), convey.ShouldEqual, "r1|r2")
				convey.So(out[0].Score, convey.ShouldEqual, 1.9)
				convey.So(out[1].Key().String(), convey.ShouldEqual, "r2|r3")
			})
		})

		convey.Convey("When the top pair fought recently", func() {
			recent := matchup.RecentPairs{}
			recent.Add("r2", "r1")
			out := matchup.Select(pool, 3, cfg, recent)

			convey.Convey("Then it drops behind the others and ties keep pair order", func() {
				convey.So(out, convey.ShouldHaveLength, 3)
				convey.So(out[0].Key().String(), convey.ShouldEqual, "r2|r3")
				convey.So(out[1].Key().String(), convey.ShouldEqual, "r1|r2")
				convey.So(out[2].Key().String(), convey.ShouldEqual, "r1|r3")
			})
		})

		convey.Convey("When a fighter is listed twice", func() {
			dup := []model.RankedFighter{ranked("a", 3.0), ranked("a", 3.0), ranked("b", 2.9)}
			out := matchup.Select(dup, 5, cfg, nil)

			convey.Convey("Then each unordered pair is accepted once", func() {
				convey.So(out, convey.ShouldHaveLength, 2)
				convey.So(out[0].Key().String(), convey.ShouldEqual, "a|a")
				convey.So(out[1].Key().String(), convey.ShouldEqual, "a|b")
			})
		})

		convey.Convey("When nothing can be paired", func() {
			convey.So(matchup.Select(pool, 0, cfg, nil), convey.ShouldBeEmpty)
			convey.So(matchup.Select(pool[:1], 3, cfg, nil), convey.ShouldBeEmpty)
		})
	})
}

func TestRecentPairsFromBouts(t *testing.T) {
	convey.Convey("Given bouts with and without a blue corner", t, func() {
		bouts := []model.Bout{
			{BoutID: "b1", RedFighterID: "fred1", BlueFighterID: model.Ptr("barney2")},
			{BoutID: "b2", RedFighterID: "wilma3"},
		}
		pairs := matchup.RecentPairsFromBouts(bouts)

		convey.Convey("Then only complete pairs are recorded, order-free", func() {
			convey.So(pairs, convey.ShouldHaveLength, 1)
			convey.So(pairs.Has("barney2", "fred1"), convey.ShouldBeTrue)
			convey.So(pairs.Has("wilma3", ""), convey.ShouldBeFalse)
		})
	})
}

func TestOpponents(t *testing.T) {
	convey.Convey("Given a lightweight and a mixed pool", t, func() {
		lw := func(id string, score float64, recency *int, division string) model.RankedFighter {
			r := ranked(id, score)
			r.Row.WeightClass = model.Ptr(division)
			r.Row.ActivityRecencyDays = recency
			return r
		}
		fighter := lw("f", 3.0, model.Ptr(30), "Lightweight")
		pool := []model.RankedFighter{
			fighter,
			lw("o1", 2.9, model.Ptr(500), "Lightweight"),
			lw("o2", 2.0, nil, "Lightweight"),
			lw("o3", 1.0, model.Ptr(50), " lightweight"),
			lw("w1", 3.0, model.Ptr(10), "Welterweight"),
		}

		convey.Convey("When asking for opponents", func() {
			out := matchup.Opponents(matchup.OpponentQuery{Fighter: fighter, Pool: pool}, scoring.DefaultConfig())

			convey.Convey("Then eligible candidates lead and failures are named", func() {
				convey.So(out, convey.ShouldHaveLength, 3)

				convey.So(out[0].Opponent.ID(), convey.ShouldEqual, "o3")
				convey.So(out[0].ConstraintsPassed, convey.ShouldBeTrue)
				convey.So(out[0].ConstraintsFailed, convey.ShouldBeEmpty)
				convey.So(out[0].Score, convey.ShouldEqual, 0.5)
				convey.So(out[0].Components["activity"], convey.ShouldEqual, 0.5)
				convey.So(out[0].Components["rank_closeness"], convey.ShouldEqual, 0.0)

				convey.So(out[1].Opponent.ID(), convey.ShouldEqual, "o1")
				convey.So(out[1].ConstraintsFailed, convey.ShouldResemble, []string{"inactive_over_400_days"})
				convey.So(out[1].Score, convey.ShouldEqual, 1.9)

				convey.So(out[2].Opponent.ID(), convey.ShouldEqual, "o2")
				convey.So(out[2].ConstraintsFailed, convey.ShouldResemble, []string{matchup.FailNoRecentActivity})
			})
		})

		convey.Convey("When limiting with a custom inactivity window", func() {
			out := matchup.Opponents(matchup.OpponentQuery{Fighter: fighter, Pool: pool, MaxInactiveDays: 600, Limit: 2}, scoring.DefaultConfig())

			convey.Convey("Then the long layoff passes and the list is cut", func() {
				convey.So(out, convey.ShouldHaveLength, 2)
				convey.So(out[0].Opponent.ID(), convey.ShouldEqual, "o1")
				convey.So(out[1].Opponent.ID(), convey.ShouldEqual, "o3")
			})
		})
	})
}
