package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/scrape"
	service "github.com/okian/fightmatch/internal/app"
	"github.com/okian/fightmatch/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

const siteBase = "http://stats.test"

type siteFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls int
}

func (f *siteFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page at %s", url)
	}
	return []byte(body), nil
}

func fakeSite() *siteFetcher {
	return &siteFetcher{pages: map[string]string{
		siteBase + "/statistics/events/completed?page=all": `<table>
			<tr><td><a href="/event-details/e1">Card One</a></td><td>January 18, 2025</td></tr>
			<tr><td><a href="/event-details/e0">Old Card</a></td><td>March 1, 2020</td></tr>
		</table>`,
		siteBase + "/event-details/e1": `<h2 class="b-content__title">Card One</h2>
<ul class="b-list__box-list">
  <li class="b-list__box-list-item">Date: January 18, 2025</li>
</ul>
<table><tbody>
<tr class="b-fight-details__table-row">
  <td><a class="b-flag" href="/fight-details/b1"><i class="b-flag__text">win</i></a></td>
  <td><a href="/fighter-details/fred1">F</a><a href="/fighter-details/barney2">B</a></td>
  <td>Lightweight</td><td>Decision - Unanimous</td><td>3</td><td>5:00</td>
</tr>
</tbody></table>`,
		siteBase + "/fight-details/b1": `<a href="/fighter-details/fred1">Fred Flintstone</a>
<a href="/fighter-details/barney2">Barney Rubble</a>
<table class="b-fight-details__table">
<tr><td>Sig. str.</td><td>45 of 80</td><td>30 of 70</td></tr>
<tr><td>TD</td><td>2 of 4</td><td>0 of 1</td></tr>
<tr><td>Ctrl</td><td>1:30</td><td>0:45</td></tr>
</table>`,
	}}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service pointed at a fake stats site", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		cfg := config.New(ctx)
		cfg.BaseURL = siteBase
		cfg.RawDir = filepath.Join(root, "raw")
		cfg.ProcessedDir = filepath.Join(root, "processed")
		cfg.FeaturesDir = filepath.Join(root, "features")
		cfg.WorkerCount = 2

		site := fakeSite()
		asOf := time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC)
		svc := service.New(cfg, service.WithFetcher(site), service.WithClock(func() time.Time { return asOf }))

		Convey("When running the whole pipeline", func() {
			report, err := svc.Scrape(ctx, "2024-01-01", cfg.RawDir)
			So(err, ShouldBeNil)

			ds, err := svc.BuildDataset(ctx, cfg.RawDir, cfg.ProcessedDir)
			So(err, ShouldBeNil)

			rows, err := svc.BuildFeatures(ctx, cfg.ProcessedDir, cfg.FeaturesPath())
			So(err, ShouldBeNil)

			snaps, err := svc.BuildSnapshots(ctx, cfg.ProcessedDir, filepath.Join(root, "features", "snapshots.csv"))
			So(err, ShouldBeNil)

			So(svc.Start(ctx), ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()
			res, err := svc.Refresh(ctx)
			So(err, ShouldBeNil)

			Convey("Then only recent events are crawled", func() {
				So(report.EventsFound, ShouldEqual, 1)
				So(report.EventsSaved, ShouldEqual, 1)
				So(report.FightsSaved, ShouldEqual, 1)
				So(site.calls, ShouldEqual, 3)
			})

			Convey("Then the dataset holds the card", func() {
				So(ds.Events, ShouldHaveLength, 1)
				So(ds.Bouts, ShouldHaveLength, 1)
				So(ds.Fighters, ShouldHaveLength, 2)
				_, err := os.Stat(filepath.Join(cfg.ProcessedDir, dataset.BoutsFile))
				So(err, ShouldBeNil)
			})

			Convey("Then features and snapshots are computed as of the clock", func() {
				So(rows, ShouldHaveLength, 2)
				for _, r := range rows {
					So(r.Division(), ShouldEqual, "Lightweight")
					So(*r.ActivityRecencyDays, ShouldEqual, 30)
				}
				So(snaps, ShouldHaveLength, 2)
			})

			Convey("Then the refreshed board pairs the two fighters", func() {
				So(res.Boards, ShouldEqual, 1)
				ms, err := svc.Matchups(ctx, "Lightweight", 5)
				So(err, ShouldBeNil)
				So(ms, ShouldHaveLength, 1)
				So(ms[0].Key().String(), ShouldEqual, "barney2|fred1")
			})
		})

		Convey("When the since date is malformed", func() {
			_, err := svc.Scrape(ctx, "01/01/2024", cfg.RawDir)

			Convey("Then nothing is fetched", func() {
				So(errors.Is(err, scrape.ErrInvalidSince), ShouldBeTrue)
				So(site.calls, ShouldEqual, 0)
			})
		})

		Convey("When building from a missing raw directory", func() {
			_, err := svc.BuildDataset(ctx, filepath.Join(root, "nowhere"), cfg.ProcessedDir)

			Convey("Then it reports missing data", func() {
				So(errors.Is(err, dataset.ErrNoData), ShouldBeTrue)
			})
		})
	})
}

func TestServiceConcurrentReads(t *testing.T) {
	Convey("Given a refreshed service", t, func() {
		ctx := context.Background()
		svc := service.New(newFixture(t.TempDir(), featureRows()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		_, err := svc.Refresh(ctx)
		So(err, ShouldBeNil)

		Convey("When readers race a second refresh", func() {
			var wg sync.WaitGroup
			var readErrs sync.Map
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for n := 0; n < 50; n++ {
						if _, err := svc.Rankings(ctx, "Lightweight", 3); err != nil {
							readErrs.Store(i, err)
						}
						_, _ = svc.Fighter(ctx, "fred1")
					}
				}(i)
			}
			_, refreshErr := svc.Refresh(ctx)
			wg.Wait()

			Convey("Then every read sees a complete board", func() {
				So(refreshErr, ShouldBeNil)
				failures := 0
				readErrs.Range(func(_, _ any) bool { failures++; return true })
				So(failures, ShouldEqual, 0)
			})
		})
	})
}
