package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/scrape"
	model "github.com/okian/fightmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const eventOne = `<h2 class="b-content__title">Card One</h2>
<ul class="b-list__box-list">
  <li class="b-list__box-list-item">Date: January 18, 2025</li>
  <li class="b-list__box-list-item">Location: Bedrock</li>
</ul>
<table><tbody>
<tr class="b-fight-details__table-row">
  <td><a class="b-flag" href="/fight-details/b1"><i class="b-flag__text">win</i></a></td>
  <td><a href="/fighter-details/fred1">F</a><a href="/fighter-details/barney2">B</a></td>
  <td>Lightweight</td><td>Decision - Unanimous</td><td>3</td><td>5:00</td>
</tr>
</tbody></table>`

const eventTwo = `<h2 class="b-content__title">Card Two</h2>
<table><tbody>
<tr class="b-fight-details__table-row">
  <td><a href="/fight-details/b1">x</a></td>
  <td><a href="/fighter-details/fred1">F</a><a href="/fighter-details/barney2">B</a></td>
  <td>Lightweight</td><td>KO/TKO</td><td>1</td><td>0:30</td>
</tr>
<tr class="b-fight-details__table-row">
  <td><a href="/fight-details/b2">x</a></td>
  <td><a href="/fighter-details/wilma3">W</a></td>
</tr>
</tbody></table>`

const fightOne = `<a href="/fighter-details/fred1">Fred Flintstone</a>
<a href="/fighter-details/barney2">Barney Rubble</a>
<table class="b-fight-details__table">
<tr><td>Sig. str.</td><td>45 of 80</td><td>30 of 70</td></tr>
<tr><td>Ctrl</td><td>1:30</td><td>0:45</td></tr>
</table>`

func writeRaw(raw string, files map[string]string) {
	for rel, body := range files {
		p := filepath.Join(raw, scrape.SourceDir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			panic(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			panic(err)
		}
	}
}

func TestBuilder(t *testing.T) {
	Convey("Given a raw directory with two events and one fight page", t, func() {
		raw := t.TempDir()
		writeRaw(raw, map[string]string{
			"events/e1.html":   eventOne,
			"events/e2.html":   eventTwo,
			"events/notes.txt": "ignored",
			"fights/b1.html":   fightOne,
		})

		ds, err := dataset.NewBuilder().Build(context.Background(), raw)
		So(err, ShouldBeNil)

		Convey("Then events keep file order with normalized dates", func() {
			So(ds.Events, ShouldHaveLength, 2)
			So(ds.Events[0].EventID, ShouldEqual, "e1")
			So(*ds.Events[0].Date, ShouldEqual, "2025-01-18")
			So(*ds.Events[0].Location, ShouldEqual, "Bedrock")
			So(ds.Events[1].Date, ShouldBeNil)
		})

		Convey("Then a bout seen twice is replaced in place", func() {
			So(ds.Bouts, ShouldHaveLength, 2)
			So(ds.Bouts[0].BoutID, ShouldEqual, "b1")
			So(ds.Bouts[0].EventID, ShouldEqual, "e2")
			So(*ds.Bouts[0].Method, ShouldEqual, "KO/TKO")
			So(ds.Bouts[0].Winner, ShouldEqual, model.WinnerUnknown)
			So(ds.Bouts[1].BoutID, ShouldEqual, "b2")
		})

		Convey("Then fighters are named from fight pages when available", func() {
			So(ds.Fighters, ShouldHaveLength, 3)
			byID := ds.FighterByID()
			So(byID["fred1"].Name, ShouldEqual, "Fred Flintstone")
			So(byID["barney2"].Name, ShouldEqual, "Barney Rubble")
			So(byID["wilma3"].Name, ShouldEqual, "wilma3")
			So(ds.Fighters[0].FighterID, ShouldEqual, "fred1")
		})

		Convey("Then stats are stored once per bout corner", func() {
			So(ds.Stats, ShouldHaveLength, 2)
			So(ds.Stats[0].Corner, ShouldEqual, model.CornerRed)
			So(*ds.Stats[0].SigStrLanded, ShouldEqual, 45)
			So(*ds.Stats[1].CtrlTimeSeconds, ShouldEqual, 45.0)
		})
	})

	Convey("Given missing or empty raw directories", t, func() {
		b := dataset.NewBuilder()

		Convey("Then a missing directory is ErrNoData", func() {
			_, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
			So(errors.Is(err, dataset.ErrNoData), ShouldBeTrue)
		})

		Convey("Then a directory without events gives empty collections", func() {
			ds, err := b.Build(context.Background(), t.TempDir())
			So(err, ShouldBeNil)
			So(ds.Fighters, ShouldNotBeNil)
			So(ds.Fighters, ShouldBeEmpty)
			So(ds.Bouts, ShouldBeEmpty)
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Given a saved dataset", t, func() {
		dir := filepath.Join(t.TempDir(), "processed")
		ds := &model.Dataset{
			Fighters: []model.Fighter{{FighterID: "fred1", Name: "Fred"}},
			Events:   []model.Event{{EventID: "e1", Name: "Card", Date: model.Ptr("2025-01-18")}},
			Bouts:    []model.Bout{{BoutID: "b1", EventID: "e1", RedFighterID: "fred1", Winner: model.WinnerRed}},
			Stats: []model.FightStats{
				{BoutID: "b1", FighterID: "fred1", Corner: model.CornerRed, SigStrLanded: model.Ptr(45)},
				{BoutID: "b1", FighterID: "barney2", Corner: model.CornerBlue},
			},
		}
		store := dataset.NewStore()
		So(store.Save(context.Background(), dir, ds), ShouldBeNil)

		Convey("Then files use arrays with explicit nulls and one stats line per record", func() {
			bouts, err := os.ReadFile(filepath.Join(dir, dataset.BoutsFile))
			So(err, ShouldBeNil)
			So(string(bouts), ShouldStartWith, "[\n")
			So(string(bouts), ShouldContainSubstring, `"blue_fighter_id": null`)

			lines, err := os.ReadFile(filepath.Join(dir, dataset.StatsFile))
			So(err, ShouldBeNil)
			So(strings.Count(string(lines), "\n"), ShouldEqual, 2)
		})

		Convey("Then loading returns the same records", func() {
			got, err := store.Load(context.Background(), dir)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, ds)

			bouts, err := store.LoadBouts(dir)
			So(err, ShouldBeNil)
			So(bouts, ShouldHaveLength, 1)
		})

		Convey("When a file is missing", func() {
			So(os.Remove(filepath.Join(dir, dataset.StatsFile)), ShouldBeNil)
			got, err := store.Load(context.Background(), dir)

			Convey("Then that collection is empty", func() {
				So(err, ShouldBeNil)
				So(got.Stats, ShouldBeEmpty)
				So(got.Bouts, ShouldHaveLength, 1)
			})
		})

		Convey("When a stats line is corrupt", func() {
			f, _ := os.OpenFile(filepath.Join(dir, dataset.StatsFile), os.O_APPEND|os.O_WRONLY, 0o644)
			_, _ = f.WriteString("\n{not json\n")
			_ = f.Close()
			_, err := store.Load(context.Background(), dir)

			Convey("Then loading fails with ErrCorrupt", func() {
				So(errors.Is(err, dataset.ErrCorrupt), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "line 4")
			})
		})
	})

	Convey("Given no processed directory", t, func() {
		_, err := dataset.NewStore().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))

		Convey("Then loading is ErrNoData", func() {
			So(errors.Is(err, dataset.ErrNoData), ShouldBeTrue)
		})
	})
}

func TestFeatureTables(t *testing.T) {
	Convey("Given feature rows", t, func() {
		path := filepath.Join(t.TempDir(), "features", "features.csv")
		rows := []model.FeatureRow{
			{
				FighterID: "fred1", Name: "Fred, the Rock", WeightClass: model.Ptr("Lightweight"),
				ActivityRecencyDays: model.Ptr(30), WinStreak: 2, Last5WinPct: model.Ptr(0.6667),
				ControlPer15: model.Ptr(8019.802),
			},
			{FighterID: "dino4", Name: "dino4"},
		}
		So(dataset.SaveFeatures(path, rows), ShouldBeNil)

		Convey("Then the header and empty cells follow the table schema", func() {
			b, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(b)), "\n")
			So(lines[0], ShouldEqual, strings.Join(model.FeatureColumns, ","))
			So(lines[1], ShouldStartWith, `fred1,"Fred, the Rock",Lightweight,30,2,0.6667,,,,8019.802,,`)
			So(lines[2], ShouldEqual, "dino4,dino4,,,0,,,,,,,")
		})

		Convey("Then loading restores the rows", func() {
			got, err := dataset.LoadFeatures(path)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, rows)
		})
	})

	Convey("Given a hand-edited features file", t, func() {
		path := filepath.Join(t.TempDir(), "features.csv")
		body := "name,fighter_id,win_streak,td_rate,activity_recency_days\n" +
			"Barney,barney2,,abc,122.0\n"
		So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)
		got, err := dataset.LoadFeatures(path)

		Convey("Then columns are read by name and bad numbers are nil", func() {
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].FighterID, ShouldEqual, "barney2")
			So(got[0].WinStreak, ShouldEqual, 0)
			So(got[0].TDRate, ShouldBeNil)
			So(*got[0].ActivityRecencyDays, ShouldEqual, 122)
			So(got[0].WeightClass, ShouldBeNil)
		})
	})

	Convey("Given no features file", t, func() {
		_, err := dataset.LoadFeatures(filepath.Join(t.TempDir(), "none.csv"))

		Convey("Then loading is ErrNoData", func() {
			So(errors.Is(err, dataset.ErrNoData), ShouldBeTrue)
		})
	})

	Convey("Given snapshot rows", t, func() {
		path := filepath.Join(t.TempDir(), "snapshots.csv")
		err := dataset.SaveSnapshots(path, []model.Snapshot{{
			BoutID: "b3", FighterID: "fred1", OpponentID: "wilma3", SnapshotDate: "2024-09-01",
			DaysSinceLastFight: model.Ptr(244), FightsLast12m: 1, FightsLast24m: 1, WinStreak: 1,
			LastNResultsSummary: model.Ptr(1.0), TotalFightsToDate: 1, LabelWin: true,
		}})

		Convey("Then they are written under the snapshot header", func() {
			So(err, ShouldBeNil)
			b, _ := os.ReadFile(path)
			lines := strings.Split(strings.TrimSpace(string(b)), "\n")
			So(lines[0], ShouldEqual, strings.Join(model.SnapshotColumns, ","))
			So(lines[1], ShouldEqual, "b3,fred1,wilma3,2024-09-01,244,1,1,1,1,1,,0,,true")
		})
	})
}
