package model

import "time"

// RankedFighter is a feature row with its rank score inside a division.
type RankedFighter struct {
	Row      FeatureRow `json:"fighter"`
	Score    float64    `json:"rank_score"`
	Position int        `json:"position"`
}

// ID is the fighter id of the row.
func (r RankedFighter) ID() string { return r.Row.FighterID }

// PairKey is an unordered fighter pair normalized so that A <= B.
type PairKey struct {
	A string
	B string
}

// NewPairKey normalizes (x, y) and (y, x) to the same key.
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// String renders the key as "a|b".
func (k PairKey) String() string { return k.A + "|" + k.B }

// Matchup is a recommended pairing.
type Matchup struct {
	A       RankedFighter `json:"a"`
	B       RankedFighter `json:"b"`
	Score   float64       `json:"matchup_score"`
	Reasons []string      `json:"reasons,omitempty"`
}

// Key returns the unordered pair of the matchup.
func (m Matchup) Key() PairKey { return NewPairKey(m.A.ID(), m.B.ID()) }

// OpponentCandidate is one suggested opponent for a specific fighter.
type OpponentCandidate struct {
	Opponent          RankedFighter      `json:"opponent"`
	Score             float64            `json:"score"`
	ConstraintsPassed bool               `json:"constraints_passed"`
	ConstraintsFailed []string           `json:"constraints_failed"`
	Components        map[string]float64 `json:"score_components"`
	Reasons           []string           `json:"reasons,omitempty"`
}

// Board is the computed ranking and matchup list of one division.
type Board struct {
	Division   string          `json:"division"`
	RunID      string          `json:"run_id"`
	ComputedAt time.Time       `json:"computed_at"`
	Rankings   []RankedFighter `json:"rankings"`
	Matchups   []Matchup       `json:"matchups"`
}
