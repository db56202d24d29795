package scrape

import model "github.com/okian/fightmatch/internal/domain/model"

// EventLink is one row of the completed events list.
type EventLink struct {
	EventID string
	Name    string
	Date    *string
	URL     string
}

// FightLink points at the details page of one bout.
type FightLink struct {
	BoutID string
	URL    string
}

// EventPage is everything recovered from a single event page.
type EventPage struct {
	Event      model.Event
	Bouts      []model.Bout
	FightLinks []FightLink
}

// FighterRef is a fighter named on a fight details page.
type FighterRef struct {
	FighterID string
	Name      string
}

// FightDetails holds per-corner totals of one bout. FighterID is empty on
// a side whose fighter link was missing.
type FightDetails struct {
	Red      model.FightStats
	Blue     model.FightStats
	Fighters []FighterRef
}
