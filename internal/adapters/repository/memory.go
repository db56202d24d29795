package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/internal/domain/scoring"
	"github.com/okian/fightmatch/pkg/metrics"
)

// snapshot is an immutable view of every board. Readers load it without
// locking; writers build a new one and swap it in.
type snapshot struct {
	boards    map[string]model.Board // keyed by normalized division
	fighters  map[string]FighterEntry
	divisions []string
}

func emptySnapshot() *snapshot {
	return &snapshot{
		boards:    map[string]model.Board{},
		fighters:  map[string]FighterEntry{},
		divisions: []string{},
	}
}

// MemoryStore is a copy-on-write in-memory Store.
type MemoryStore struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
	now  func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(emptySnapshot())
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, board model.Board) error {
	key := scoring.NormalizeDivision(board.Division)
	if key == "" {
		metrics.RecordErrorByComponent("repository", "empty_division")
		return ErrEmptyDivision
	}
	if board.ComputedAt.IsZero() {
		board.ComputedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.snap.Load()
	boards := make(map[string]model.Board, len(cur.boards)+1)
	for k, b := range cur.boards {
		boards[k] = b
	}
	boards[key] = board
	s.publish(boards)
	return nil
}

// Prune implements Store.Prune.
func (s *MemoryStore) Prune(_ context.Context, runID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.snap.Load()
	boards := make(map[string]model.Board, len(cur.boards))
	for k, b := range cur.boards {
		if b.RunID == runID {
			boards[k] = b
		}
	}
	removed := len(cur.boards) - len(boards)
	if removed > 0 {
		s.publish(boards)
	}
	return removed
}

// publish rebuilds the indexes over boards and swaps them in (assumes mu is held).
func (s *MemoryStore) publish(boards map[string]model.Board) {
	next := &snapshot{
		boards:    boards,
		fighters:  make(map[string]FighterEntry),
		divisions: make([]string, 0, len(boards)),
	}
	for _, b := range boards {
		next.divisions = append(next.divisions, b.Division)
		for _, r := range b.Rankings {
			next.fighters[r.ID()] = FighterEntry{Division: b.Division, RunID: b.RunID, Ranked: r}
		}
	}
	sort.Strings(next.divisions)
	s.snap.Store(next)
	metrics.UpdateBoardsStored(len(boards))
}

// Board implements Store.Board.
func (s *MemoryStore) Board(_ context.Context, division string) (model.Board, error) {
	b, ok := s.snap.Load().boards[scoring.NormalizeDivision(division)]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Board{}, fmt.Errorf("division %q: %w", division, ErrNotFound)
	}
	return b, nil
}

// Rankings implements Store.Rankings.
func (s *MemoryStore) Rankings(ctx context.Context, division string, limit int) ([]model.RankedFighter, error) {
	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	b, err := s.Board(ctx, division)
	if err != nil {
		return nil, err
	}
	return head(b.Rankings, limit), nil
}

// Matchups implements Store.Matchups.
func (s *MemoryStore) Matchups(ctx context.Context, division string, limit int) ([]model.Matchup, error) {
	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	b, err := s.Board(ctx, division)
	if err != nil {
		return nil, err
	}
	return head(b.Matchups, limit), nil
}

// Fighter implements Store.Fighter.
func (s *MemoryStore) Fighter(_ context.Context, fighterID string) (FighterEntry, error) {
	e, ok := s.snap.Load().fighters[fighterID]
	if !ok {
		return FighterEntry{}, fmt.Errorf("fighter %q: %w", fighterID, ErrNotFound)
	}
	return e, nil
}

// Divisions implements Store.Divisions.
func (s *MemoryStore) Divisions(_ context.Context) []string {
	divs := s.snap.Load().divisions
	out := make([]string, len(divs))
	copy(out, divs)
	return out
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snap.Load().boards)
}

// head copies at most n leading items so callers cannot alias a stored board.
func head[T any](items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, n)
	copy(out, items[:n])
	return out
}
