package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/logger"
)

// Raw page layout under the raw directory.
const (
	SourceDir = "ufcstats"
	EventsDir = "events"
	FightsDir = "fights"

	completedEventsPath = "/statistics/events/completed?page=all"
	dirPerm             = 0o755
	filePerm            = 0o644
)

// ErrInvalidSince is returned for a since date that is not YYYY-MM-DD.
var ErrInvalidSince = errors.New("since must be YYYY-MM-DD")

// Fetcher downloads one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ScrapeReport counts what a crawl did.
type ScrapeReport struct {
	EventsFound  int `json:"events_found"`
	EventsSaved  int `json:"events_saved"`
	EventsFailed int `json:"events_failed"`
	FightsSaved  int `json:"fights_saved"`
	FightsFailed int `json:"fights_failed"`
}

// Crawler walks the events list, event pages and fight pages in order.
type Crawler struct {
	fetcher Fetcher
	parser  *Parser
	baseURL string
	log     logger.Logger
}

// NewCrawler creates a crawler. The parser's base URL is also the crawl root.
func NewCrawler(f Fetcher, p *Parser, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.Nop()
	}
	return &Crawler{fetcher: f, parser: p, baseURL: p.baseURL, log: log}
}

// ValidateSince checks that since is an ISO date.
func ValidateSince(since string) error {
	if _, err := time.Parse(model.ISODate, since); err != nil || len(since) != len(model.ISODate) {
		return fmt.Errorf("%w: got %q", ErrInvalidSince, since)
	}
	return nil
}

// DiscoverEventsSince lists events dated on or after since. Events whose
// date is missing or unreadable are kept.
func (c *Crawler) DiscoverEventsSince(ctx context.Context, since string) ([]EventLink, error) {
	if err := ValidateSince(since); err != nil {
		return nil, err
	}
	body, err := c.fetcher.Fetch(ctx, c.baseURL+completedEventsPath)
	if err != nil {
		return nil, fmt.Errorf("fetch events list: %w", err)
	}
	all := c.parser.ParseEventsList(body)
	out := make([]EventLink, 0, len(all))
	for _, e := range all {
		if e.Date == nil {
			out = append(out, e)
			continue
		}
		d := model.NormalizeDate(*e.Date)
		if _, ok := model.ParseDate(d); !ok || len(d) != len(model.ISODate) {
			out = append(out, e)
			continue
		}
		if d >= since {
			e.Date = &d
			out = append(out, e)
		}
	}
	return out, nil
}

// ScrapeSince downloads every event since the given date and its fight
// pages into rawDir/ufcstats. A failed event or fight is logged and
// skipped; only discovery failures and cancellation stop the crawl.
func (c *Crawler) ScrapeSince(ctx context.Context, since, rawDir string) (ScrapeReport, error) {
	var report ScrapeReport
	events, err := c.DiscoverEventsSince(ctx, since)
	if err != nil {
		return report, err
	}
	report.EventsFound = len(events)
	c.log.Info(ctx, "discovered events", logger.Int("count", len(events)), logger.String("since", since))

	eventsDir := filepath.Join(rawDir, SourceDir, EventsDir)
	fightsDir := filepath.Join(rawDir, SourceDir, FightsDir)
	for _, dir := range []string{eventsDir, fightsDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return report, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		html, err := c.fetcher.Fetch(ctx, ev.URL)
		if err != nil {
			report.EventsFailed++
			c.log.Warn(ctx, "skip event", logger.String("event_id", ev.EventID), logger.Error(err))
			continue
		}
		if err := os.WriteFile(filepath.Join(eventsDir, ev.EventID+".html"), html, filePerm); err != nil {
			report.EventsFailed++
			c.log.Warn(ctx, "skip event", logger.String("event_id", ev.EventID), logger.Error(err))
			continue
		}
		report.EventsSaved++
		c.log.Info(ctx, "event saved", logger.String("event_id", ev.EventID), logger.String("name", ev.Name))

		page := c.parser.ParseEventPage(html, ev.EventID)
		for _, fl := range page.FightLinks {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			body, err := c.fetcher.Fetch(ctx, fl.URL)
			if err == nil {
				err = os.WriteFile(filepath.Join(fightsDir, fl.BoutID+".html"), body, filePerm)
			}
			if err != nil {
				report.FightsFailed++
				c.log.Debug(ctx, "skip fight", logger.String("bout_id", fl.BoutID), logger.Error(err))
				continue
			}
			report.FightsSaved++
		}
	}
	return report, nil
}
