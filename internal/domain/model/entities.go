// Package model contains domain records passed between layers.
//
// Optional values are pointers and serialize as JSON null, so a field the
// source never supplied stays distinguishable from a zero.
package model

import "time"

// Corner designates one side of a bout. It orders the two participants
// and says nothing about rank.
type Corner string

// Corners.
const (
	CornerRed  Corner = "red"
	CornerBlue Corner = "blue"
)

// Fighter is a competitor known to the dataset.
type Fighter struct {
	FighterID string   `json:"fighter_id"`
	Name      string   `json:"name"`
	Height    *float64 `json:"height"`
	Reach     *float64 `json:"reach"`
	Stance    *string  `json:"stance"`
	DOB       *string  `json:"dob"`
}

// Event is a card of bouts on one date.
type Event struct {
	EventID  string  `json:"event_id"`
	Name     string  `json:"name"`
	Date     *string `json:"date"`
	Location *string `json:"location"`
}

// Bout is a single contest inside an event. The red fighter is always
// known; every other field may be missing.
type Bout struct {
	BoutID        string  `json:"bout_id"`
	EventID       string  `json:"event_id"`
	RedFighterID  string  `json:"red_fighter_id"`
	BlueFighterID *string `json:"blue_fighter_id"`
	WeightClass   *string `json:"weight_class"`
	Method        *string `json:"method"`
	Round         *int    `json:"round"`
	Time          *string `json:"time"`
	Winner        Winner  `json:"winner"`
	Ref           *string `json:"ref"`
}

// Blue returns the blue corner id or "" when it was not recorded.
func (b Bout) Blue() string {
	if b.BlueFighterID == nil {
		return ""
	}
	return *b.BlueFighterID
}

// Opponent returns the other corner for fighterID and whether fighterID
// took part at all.
func (b Bout) Opponent(fighterID string) (string, Corner, bool) {
	switch fighterID {
	case "":
		return "", "", false
	case b.RedFighterID:
		return b.Blue(), CornerRed, true
	case b.Blue():
		return b.RedFighterID, CornerBlue, true
	}
	return "", "", false
}

// FightStats holds one corner's totals for one bout.
type FightStats struct {
	BoutID          string   `json:"bout_id"`
	FighterID       string   `json:"fighter_id"`
	Corner          Corner   `json:"corner"`
	SigStrLanded    *int     `json:"sig_str_landed"`
	SigStrAtt       *int     `json:"sig_str_att"`
	TotalStrLanded  *int     `json:"total_str_landed"`
	TotalStrAtt     *int     `json:"total_str_att"`
	TDLanded        *int     `json:"td_landed"`
	TDAtt           *int     `json:"td_att"`
	SubAtt          *int     `json:"sub_att"`
	Rev             *int     `json:"rev"`
	CtrlTimeSeconds *float64 `json:"ctrl_time_seconds"`
}

// Dataset is the normalized output of one build.
type Dataset struct {
	Fighters []Fighter
	Events   []Event
	Bouts    []Bout
	Stats    []FightStats
}

// EventDates maps event ids to their parsed dates. Events without a
// parsable date are left out.
func (d *Dataset) EventDates() map[string]time.Time {
	out := make(map[string]time.Time, len(d.Events))
	for _, e := range d.Events {
		if e.EventID == "" || e.Date == nil {
			continue
		}
		if t, ok := ParseDate(*e.Date); ok {
			out[e.EventID] = t
		}
	}
	return out
}

// StatsByBout groups stats by bout id and corner.
func (d *Dataset) StatsByBout() map[string]map[Corner]FightStats {
	out := make(map[string]map[Corner]FightStats)
	for _, s := range d.Stats {
		if s.BoutID == "" {
			continue
		}
		byCorner, ok := out[s.BoutID]
		if !ok {
			byCorner = make(map[Corner]FightStats, 2)
			out[s.BoutID] = byCorner
		}
		if _, dup := byCorner[s.Corner]; !dup {
			byCorner[s.Corner] = s
		}
	}
	return out
}

// FighterByID indexes the registry by id.
func (d *Dataset) FighterByID() map[string]Fighter {
	out := make(map[string]Fighter, len(d.Fighters))
	for _, f := range d.Fighters {
		out[f.FighterID] = f
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
