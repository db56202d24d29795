// Package scrape turns source HTML into dataset records and drives the
// crawl that downloads it.
//
// Parsing is total: malformed markup yields partial results with missing
// fields left nil, never an error.
package scrape

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/metrics"
)

// DefaultBaseURL is the statistics site root.
const DefaultBaseURL = "https://www.ufcstats.com"

const (
	selEventLinks   = "a[href*='event-details']"
	selEventTitle   = "h2.b-content__title, .b-content__title a, span.b-content__title"
	selEventDate    = ".b-list__box-list-item span, .b-list__box-list .b-list__box-list-item"
	selEventPlace   = ".b-list__box-list-item:nth-of-type(2)"
	selFightRows    = "tr.b-fight-details__table-row"
	selFallbackRows = "table tbody tr"
	selFlag         = "td .b-flag__text, td .b-flag"
	selFighterLinks = "a[href*='fighter-details']"
	selStatsRows    = "table.b-fight-details__table tr"

	maxRoundDigits = 2
)

var (
	listDateRe  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\w+\s+\d{1,2},\s*\d{4})`)
	roundRe     = regexp.MustCompile(`^\d+$`)
	clockRe     = regexp.MustCompile(`^\d+:\d+`)
	ofRe        = regexp.MustCompile(`\s+of\s+`)
	nonNumberRe = regexp.MustCompile(`[^\d-]`)
	fieldLabels = []string{"Date:", "Location:"}

	methodWords = []string{"Decision", "KO", "TKO", "SUB", "DQ", "No Contest", "Overturned"}
	divisions   = []string{
		"heavyweight", "lightweight", "welterweight", "middleweight", "featherweight",
		"bantamweight", "flyweight", "light heavyweight", "women",
	}
)

// Parser extracts records from source pages.
type Parser struct {
	baseURL string
	policy  WinnerPolicy
}

// NewParser creates a parser for DefaultBaseURL with PolicyStrict.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{baseURL: DefaultBaseURL, policy: PolicyStrict}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithBaseURL sets the root used to absolutize relative links.
func WithBaseURL(u string) ParserOption {
	return func(p *Parser) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithWinnerPolicy sets how ambiguous result flags are read.
func WithWinnerPolicy(policy WinnerPolicy) ParserOption {
	return func(p *Parser) {
		p.policy = policy
	}
}

// ParseEventsList returns every event linked from a completed events page.
func (p *Parser) ParseEventsList(html []byte) []EventLink {
	out := make([]EventLink, 0)
	doc, ok := load(html)
	if !ok {
		return out
	}
	doc.Find(selEventLinks).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		id := slug(href)
		name := text(a)
		if id == "" || name == "" {
			return
		}
		link := EventLink{EventID: id, Name: name, URL: p.absolute(href)}
		a.Closest("tr").Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			if t := text(td); listDateRe.MatchString(t) {
				link.Date = &t
				return false
			}
			return true
		})
		out = append(out, link)
	})
	metrics.RecordParsed("event_link", len(out))
	return out
}

// ParseEventPage reads event metadata and the bouts on the card. A row
// becomes a bout when it links to fight details and to at least one fighter.
func (p *Parser) ParseEventPage(html []byte, eventID string) EventPage {
	page := EventPage{
		Event:      model.Event{EventID: eventID, Name: "Event " + eventID},
		Bouts:      make([]model.Bout, 0),
		FightLinks: make([]FightLink, 0),
	}
	doc, ok := load(html)
	if !ok {
		return page
	}

	if name := text(doc.Find(selEventTitle).First()); name != "" {
		page.Event.Name = name
	}
	if d := doc.Find(selEventDate).First(); d.Length() > 0 {
		if t := stripLabel(text(d)); t != "" {
			page.Event.Date = &t
		}
	}
	if l := doc.Find(selEventPlace).First(); l.Length() > 0 {
		if t := stripLabel(text(l)); t != "" {
			page.Event.Location = &t
		}
	}

	rows := doc.Find(selFightRows)
	if rows.Length() == 0 {
		rows = doc.Find(selFallbackRows)
	}
	rows.Each(func(_ int, tr *goquery.Selection) {
		bout, link, ok := p.parseBoutRow(tr, eventID)
		if !ok {
			return
		}
		page.Bouts = append(page.Bouts, bout)
		page.FightLinks = append(page.FightLinks, link)
	})
	metrics.RecordParsed("bout", len(page.Bouts))
	return page
}

func (p *Parser) parseBoutRow(tr *goquery.Selection, eventID string) (model.Bout, FightLink, bool) {
	var fightHref string
	var fighters []string
	tr.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		switch {
		case strings.Contains(href, "fight-details"):
			if fightHref == "" {
				fightHref = href
			}
		case strings.Contains(href, "fighter-details"):
			if id := slug(href); id != "" {
				fighters = append(fighters, id)
			}
		}
	})
	boutID := slug(fightHref)
	if boutID == "" || len(fighters) == 0 {
		return model.Bout{}, FightLink{}, false
	}

	bout := model.Bout{BoutID: boutID, EventID: eventID, RedFighterID: fighters[0]}
	if len(fighters) > 1 {
		bout.BlueFighterID = model.Ptr(fighters[1])
	}
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		classifyCell(text(td), &bout)
	})
	if flag := tr.Find(selFlag).First(); flag.Length() > 0 {
		bout.Winner = InferWinner(text(flag), p.policy)
	}
	// A win for the blue corner needs a blue fighter.
	if bout.Winner == model.WinnerBlue && bout.BlueFighterID == nil {
		bout.Winner = model.WinnerUnknown
	}
	return bout, FightLink{BoutID: boutID, URL: p.absolute(fightHref)}, true
}

// classifyCell assigns unlabeled cell text to a bout field by its shape.
func classifyCell(t string, b *model.Bout) {
	if t == "" {
		return
	}
	for _, w := range methodWords {
		if strings.Contains(t, w) {
			b.Method = model.Ptr(t)
			break
		}
	}
	if b.Round == nil && len(t) <= maxRoundDigits && roundRe.MatchString(t) {
		if n, err := strconv.Atoi(t); err == nil {
			b.Round = &n
		}
	}
	if clockRe.MatchString(t) {
		b.Time = model.Ptr(t)
	}
	lower := strings.ToLower(t)
	for _, d := range divisions {
		if strings.Contains(lower, d) {
			b.WeightClass = model.Ptr(t)
			break
		}
	}
}

// ParseFightDetails reads per-corner totals. The first two fighter links
// name the red and blue corners.
func (p *Parser) ParseFightDetails(html []byte, boutID string) FightDetails {
	out := FightDetails{
		Red:      model.FightStats{BoutID: boutID, Corner: model.CornerRed},
		Blue:     model.FightStats{BoutID: boutID, Corner: model.CornerBlue},
		Fighters: make([]FighterRef, 0, 2),
	}
	doc, ok := load(html)
	if !ok {
		return out
	}
	doc.Find(selFighterLinks).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if id := slug(a.AttrOr("href", "")); id != "" {
			out.Fighters = append(out.Fighters, FighterRef{FighterID: id, Name: text(a)})
		}
		return len(out.Fighters) < 2
	})

	doc.Find(selStatsRows).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(text(cells.Eq(0)))
		applyStat(label, text(cells.Eq(1)), &out.Red)
		applyStat(label, text(cells.Eq(2)), &out.Blue)
	})

	if len(out.Fighters) > 0 {
		out.Red.FighterID = out.Fighters[0].FighterID
	}
	if len(out.Fighters) > 1 {
		out.Blue.FighterID = out.Fighters[1].FighterID
	}
	metrics.RecordParsed("fight_stats", len(out.Fighters))
	return out
}

// applyStat stores value into the field named by label. Unknown labels are ignored.
func applyStat(label, value string, s *model.FightStats) {
	switch {
	case strings.Contains(label, "sig. str") || strings.Contains(label, "significant"):
		s.SigStrLanded, s.SigStrAtt = landedOf(value)
	case strings.Contains(label, "total str") || strings.Contains(label, "total strike"):
		s.TotalStrLanded, s.TotalStrAtt = landedOf(value)
	case strings.Contains(label, "takedown") || (strings.Contains(label, "td") && !strings.Contains(label, "sub")):
		s.TDLanded, s.TDAtt = landedOf(value)
	case strings.Contains(label, "sub"):
		s.SubAtt = toInt(value)
	case strings.Contains(label, "reversal") || strings.Contains(label, "rev"):
		s.Rev = toInt(value)
	case strings.Contains(label, "control") || strings.Contains(label, "ctrl"):
		s.CtrlTimeSeconds = toSeconds(value)
	}
}

// landedOf splits "45 of 80" into landed and attempted.
func landedOf(v string) (*int, *int) {
	parts := ofRe.Split(strings.TrimSpace(v), -1)
	landed := toInt(parts[0])
	if len(parts) < 2 {
		return landed, nil
	}
	return landed, toInt(parts[1])
}

func toInt(v string) *int {
	n, err := strconv.Atoi(nonNumberRe.ReplaceAllString(v, ""))
	if err != nil {
		return nil
	}
	return &n
}

// toSeconds reads "m:ss" or a plain number of seconds.
func toSeconds(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if mins, secs, ok := strings.Cut(v, ":"); ok {
		m, err := strconv.Atoi(strings.TrimSpace(mins))
		if err != nil {
			return nil
		}
		s, err := strconv.ParseFloat(strings.TrimSpace(secs), 64)
		if err != nil {
			return nil
		}
		total := float64(m)*60 + s
		return &total
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

func (p *Parser) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return p.baseURL + href
}

func load(html []byte) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// slug is the last non-empty path segment of href.
func slug(href string) string {
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// stripLabel drops a leading "Date:" or "Location:" caption.
func stripLabel(t string) string {
	for _, l := range fieldLabels {
		if rest, ok := strings.CutPrefix(t, l); ok {
			return strings.TrimSpace(rest)
		}
	}
	return t
}
