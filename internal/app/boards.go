package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	eventqueue "github.com/okian/fightmatch/internal/adapters/mq/queue"
	"github.com/okian/fightmatch/internal/adapters/repository"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/internal/domain/matchup"
	"github.com/okian/fightmatch/internal/domain/scoring"
	"github.com/okian/fightmatch/internal/domain/types"
	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

// Board sizes served by the API.
const (
	BoardRankings = scoring.DefaultTopN
	BoardMatchups = DefaultTop
)

type jobResult struct {
	division string
	err      error
}

// Refresh reloads the features table, computes one board per division on
// the worker pool and publishes them under a new run id. Boards of older
// runs are pruned only when every division succeeded.
func (s *Service) Refresh(ctx context.Context) (types.RefreshResult, error) {
	if !s.isStarted() {
		return types.RefreshResult{}, ErrNotStarted
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		return types.RefreshResult{}, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	start := time.Now()
	rows, err := dataset.LoadFeatures(s.cfg.FeaturesPath())
	if err != nil {
		return types.RefreshResult{}, fmt.Errorf("load features: %w", err)
	}
	recent, err := s.recentPairs(s.cfg.ProcessedDir)
	if err != nil {
		return types.RefreshResult{}, err
	}

	state := newRunState(uuid.NewString(), rows, recent)
	s.runs.Store(state.id, state)
	defer s.runs.Delete(state.id)

	divisions := scoring.Divisions(rows)
	result := types.RefreshResult{RunID: state.id, Fighters: len(rows), Divisions: len(divisions)}
	results := make(chan jobResult, len(divisions))

	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	pending := 0
	for _, division := range divisions {
		division := division
		job := eventqueue.Job{
			ID:         uuid.NewString(),
			RunID:      state.id,
			Division:   division,
			EnqueuedAt: time.Now(),
			Done:       func(err error) { results <- jobResult{division: division, err: err} },
		}
		if err := q.Enqueue(ctx, job); err != nil {
			s.log.Warn(ctx, "board job rejected",
				logger.String("division", division),
				logger.Error(err),
			)
			result.Failed = append(result.Failed, division)
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-results:
			if r.err != nil {
				result.Failed = append(result.Failed, r.division)
				continue
			}
			result.Boards++
		case <-ctx.Done():
			return result, fmt.Errorf("refresh %s: %w", state.id, ctx.Err())
		}
	}

	s.current.Store(state)
	if len(result.Failed) == 0 {
		result.Pruned = s.boards.Prune(ctx, state.id)
	}
	result.TookMS = time.Since(start).Milliseconds()

	s.log.Info(ctx, "boards refreshed",
		logger.String("runId", state.id),
		logger.Int("fighters", result.Fighters),
		logger.Int("boards", result.Boards),
		logger.Int("failed", len(result.Failed)),
		logger.Int("pruned", result.Pruned),
	)
	return result, nil
}

// computeBoard ranks one division of the job's run and stores the board.
func (s *Service) computeBoard(ctx context.Context, j eventqueue.Job) error {
	v, ok := s.runs.Load(j.RunID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleRun, j.RunID)
	}
	state := v.(*runState)
	cfg := s.ScoringConfig()

	start := time.Now()
	ranked := scoring.NewRanker(scoring.WithConfig(cfg), scoring.WithTopN(BoardRankings)).
		RankByDivision(state.rows, j.Division)
	metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))

	matchups := explainAll(matchup.Select(ranked, BoardMatchups, cfg, state.recent))
	metrics.RecordMatchupsSelected(len(matchups))

	board := model.Board{
		Division: j.Division,
		RunID:    j.RunID,
		Rankings: ranked,
		Matchups: matchups,
	}
	if err := s.boards.Put(ctx, board); err != nil {
		return fmt.Errorf("store board %s: %w", j.Division, err)
	}
	metrics.RecordBoardComputed()
	return nil
}

// Divisions lists the divisions that have a board.
func (s *Service) Divisions(ctx context.Context) []string {
	return s.boards.Divisions(ctx)
}

// Rankings returns up to limit ranked fighters of a division.
func (s *Service) Rankings(ctx context.Context, division string, limit int) ([]model.RankedFighter, error) {
	return s.boards.Rankings(ctx, division, limit)
}

// Matchups returns up to limit recommended matchups of a division.
func (s *Service) Matchups(ctx context.Context, division string, limit int) ([]model.Matchup, error) {
	return s.boards.Matchups(ctx, division, limit)
}

// Fighter returns the fighter's features from the last refresh together
// with the board position, when the fighter made the board.
func (s *Service) Fighter(ctx context.Context, fighterID string) (types.FighterView, error) {
	state := s.current.Load()
	if state == nil {
		return types.FighterView{}, fmt.Errorf("fighter %s: %w", fighterID, repository.ErrNotFound)
	}
	row, ok := state.byID[fighterID]
	if !ok {
		return types.FighterView{}, fmt.Errorf("fighter %s: %w", fighterID, repository.ErrNotFound)
	}

	view := types.FighterView{
		Fighter:   row,
		Division:  row.Division(),
		RankScore: scoring.RankScore(row, s.ScoringConfig(), nil),
		RunID:     state.id,
	}
	if entry, err := s.boards.Fighter(ctx, fighterID); err == nil {
		pos := entry.Ranked.Position
		view.Position = &pos
		view.RankScore = entry.Ranked.Score
		view.RunID = entry.RunID
	}
	return view, nil
}

// Opponents rates up to limit opponents for a fighter from the last refresh.
func (s *Service) Opponents(_ context.Context, fighterID string, limit int) (types.OpponentsView, error) {
	if limit < 1 {
		return types.OpponentsView{}, fmt.Errorf("%w: got %d", repository.ErrInvalidLimit, limit)
	}
	state := s.current.Load()
	if state == nil {
		return types.OpponentsView{}, fmt.Errorf("fighter %s: %w", fighterID, repository.ErrNotFound)
	}
	return opponentsFor(state.rows, fighterID, s.ScoringConfig(), state.recent, s.cfg.MaxInactiveDays, limit)
}
