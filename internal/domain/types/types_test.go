package types_test

import (
	"testing"

	"github.com/goccy/go-json"
	model "github.com/okian/fightmatch/internal/domain/model"
	types "github.com/okian/fightmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendationLabel(t *testing.T) {
	Convey("Given recommendations", t, func() {
		Convey("When no division was requested", func() {
			r := types.Recommendation{}

			Convey("Then the label covers all divisions", func() {
				So(r.Label(), ShouldEqual, "All")
			})
		})

		Convey("When a division was requested", func() {
			r := types.Recommendation{Division: "Lightweight"}

			Convey("Then the label is the division", func() {
				So(r.Label(), ShouldEqual, "Lightweight")
			})
		})
	})
}

func TestFighterView(t *testing.T) {
	Convey("Given a fighter outside the board", t, func() {
		v := types.FighterView{Fighter: model.FeatureRow{FighterID: "fred1"}, Division: "Lightweight"}

		Convey("Then it is not ranked and the position encodes as null", func() {
			So(v.Ranked(), ShouldBeFalse)
			out, err := json.Marshal(v)
			So(err, ShouldBeNil)
			So(string(out), ShouldContainSubstring, `"position":null`)
			So(string(out), ShouldNotContainSubstring, `"run_id"`)
		})

		Convey("When a position is set", func() {
			v.Position = model.Ptr(2)

			Convey("Then it is ranked", func() {
				So(v.Ranked(), ShouldBeTrue)
			})
		})
	})
}

func TestRefreshResultEncoding(t *testing.T) {
	Convey("Given a refresh without failures", t, func() {
		r := types.RefreshResult{RunID: "run-1", Divisions: 2, Boards: 2}

		Convey("Then failed divisions are omitted", func() {
			out, err := json.Marshal(r)
			So(err, ShouldBeNil)
			So(string(out), ShouldNotContainSubstring, "failed")
			So(string(out), ShouldContainSubstring, `"boards":2`)
		})
	})
}
