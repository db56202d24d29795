// Package types contains the response shapes shared by the service and the HTTP API.
package types

import (
	model "github.com/okian/fightmatch/internal/domain/model"
)

// AllDivisions labels a recommendation that spans every weight class.
const AllDivisions = "All"

// FighterView is a fighter's feature row with its place on the division board.
type FighterView struct {
	Fighter   model.FeatureRow `json:"fighter"`
	Division  string           `json:"division"`
	Position  *int             `json:"position"`
	RankScore float64          `json:"rank_score"`
	RunID     string           `json:"run_id,omitempty"`
}

// Ranked reports whether the fighter made the stored board.
func (v FighterView) Ranked() bool { return v.Position != nil }

// OpponentsView lists suggested opponents for one fighter.
type OpponentsView struct {
	Fighter    model.RankedFighter       `json:"fighter"`
	Candidates []model.OpponentCandidate `json:"candidates"`
}

// Recommendation is the matchup list of one division, or of all of them.
type Recommendation struct {
	Division string          `json:"division"`
	Matchups []model.Matchup `json:"matchups"`
}

// Label is the division name, or AllDivisions when none was requested.
func (r Recommendation) Label() string {
	if r.Division == "" {
		return AllDivisions
	}
	return r.Division
}

// RefreshResult summarizes one recomputation of the division boards.
type RefreshResult struct {
	RunID     string   `json:"run_id"`
	Fighters  int      `json:"fighters"`
	Divisions int      `json:"divisions"`
	Boards    int      `json:"boards"`
	Failed    []string `json:"failed,omitempty"`
	Pruned    int      `json:"pruned"`
	TookMS    int64    `json:"took_ms"`
}

// Health is the liveness payload.
type Health struct {
	Status  string `json:"status"`
	Started bool   `json:"started"`
	RunID   string `json:"run_id,omitempty"`
}
