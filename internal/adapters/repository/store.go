// Package repository holds the computed division boards served by the API.
package repository

import (
	"context"

	model "github.com/okian/fightmatch/internal/domain/model"
)

// FighterEntry locates a ranked fighter on its division board.
type FighterEntry struct {
	Division string              `json:"division"`
	RunID    string              `json:"run_id"`
	Ranked   model.RankedFighter `json:"ranked"`
}

// Store provides read/write access to division boards.
type Store interface {
	// Put stores the board of one division, replacing any earlier board
	// for the same normalized division.
	Put(ctx context.Context, board model.Board) error
	// Prune drops every board not computed by runID and returns how many were removed.
	Prune(ctx context.Context, runID string) int

	// Board returns the board of a division.
	// Returns ErrNotFound if the division has no board.
	Board(ctx context.Context, division string) (model.Board, error)
	// Rankings returns at most limit ranked fighters of a division.
	Rankings(ctx context.Context, division string, limit int) ([]model.RankedFighter, error)
	// Matchups returns at most limit matchups of a division.
	Matchups(ctx context.Context, division string, limit int) ([]model.Matchup, error)
	// Fighter finds a fighter on any board.
	Fighter(ctx context.Context, fighterID string) (FighterEntry, error)

	// Divisions lists the divisions that have a board, sorted.
	Divisions(ctx context.Context) []string
	// Count returns the number of boards.
	Count(ctx context.Context) int
}
