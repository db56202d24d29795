package service

import (
	"context"
	"fmt"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/repository"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/internal/domain/explain"
	"github.com/okian/fightmatch/internal/domain/matchup"
	"github.com/okian/fightmatch/internal/domain/scoring"
	"github.com/okian/fightmatch/internal/domain/types"
)

// Recommendation defaults.
const (
	DefaultTop  = 10
	minRankPool = 20
)

// RecommendRequest selects what Recommend ranks and how.
type RecommendRequest struct {
	Division     string
	Top          int
	FeaturesPath string
	ProcessedDir string
	Scoring      scoring.Config
}

// OpponentsRequest selects whose opponents FighterOpponents rates.
type OpponentsRequest struct {
	FighterID    string
	Top          int
	FeaturesPath string
	ProcessedDir string
	Scoring      scoring.Config
}

// Recommend ranks the division from the features table and returns the
// best matchups with their reasons. Bouts in ProcessedDir count as recent
// pairs when rematches are avoided.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (types.Recommendation, error) {
	top := req.Top
	if top < 1 {
		top = DefaultTop
	}
	rows, err := dataset.LoadFeatures(req.FeaturesPath)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("load features: %w", err)
	}
	recent, err := s.recentPairs(req.ProcessedDir)
	if err != nil {
		return types.Recommendation{}, err
	}

	ranker := scoring.NewRanker(scoring.WithConfig(req.Scoring), scoring.WithTopN(max(minRankPool, 2*top)))
	ranked := ranker.RankByDivision(rows, req.Division)
	rec := types.Recommendation{Division: req.Division}
	if len(ranked) == 0 {
		return rec, fmt.Errorf("%w: division %s", ErrNoRankedFighters, rec.Label())
	}
	rec.Matchups = explainAll(matchup.Select(ranked, top, req.Scoring, recent))
	return rec, nil
}

// FighterOpponents rates every fighter of the same division as an
// opponent for req.FighterID.
func (s *Service) FighterOpponents(ctx context.Context, req OpponentsRequest) (types.OpponentsView, error) {
	top := req.Top
	if top < 1 {
		top = DefaultTop
	}
	rows, err := dataset.LoadFeatures(req.FeaturesPath)
	if err != nil {
		return types.OpponentsView{}, fmt.Errorf("load features: %w", err)
	}
	recent, err := s.recentPairs(req.ProcessedDir)
	if err != nil {
		return types.OpponentsView{}, err
	}
	return opponentsFor(rows, req.FighterID, req.Scoring, recent, s.cfg.MaxInactiveDays, top)
}

// recentPairs reads the bouts in dir. A missing dir or bouts file gives
// no pairs.
func (s *Service) recentPairs(dir string) (matchup.RecentPairs, error) {
	if dir == "" {
		return matchup.RecentPairs{}, nil
	}
	bouts, err := s.datasets.LoadBouts(dir)
	if err != nil {
		return nil, fmt.Errorf("load bouts: %w", err)
	}
	return matchup.RecentPairsFromBouts(bouts), nil
}

func opponentsFor(rows []model.FeatureRow, fighterID string, cfg scoring.Config, recent matchup.RecentPairs, maxInactive, limit int) (types.OpponentsView, error) {
	var self *model.FeatureRow
	for i := range rows {
		if rows[i].FighterID == fighterID {
			self = &rows[i]
			break
		}
	}
	if self == nil {
		return types.OpponentsView{}, fmt.Errorf("fighter %s: %w", fighterID, repository.ErrNotFound)
	}

	pool := scoring.NewRanker(scoring.WithConfig(cfg), scoring.WithTopN(0)).RankByDivision(rows, self.Division())
	me := model.RankedFighter{Row: *self, Score: scoring.RankScore(*self, cfg, nil)}
	for _, r := range pool {
		if r.ID() == fighterID {
			me = r
			break
		}
	}

	candidates := matchup.Opponents(matchup.OpponentQuery{
		Fighter:         me,
		Pool:            pool,
		Recent:          recent,
		MaxInactiveDays: maxInactive,
		Limit:           limit,
	}, cfg)
	for i := range candidates {
		opp := candidates[i].Opponent
		candidates[i].Reasons = explain.Explain(me.Row, opp.Row, me.Score, opp.Score,
			&explain.Positions{A: me.Position, B: opp.Position})
	}
	return types.OpponentsView{Fighter: me, Candidates: candidates}, nil
}

func explainAll(ms []model.Matchup) []model.Matchup {
	for i := range ms {
		m := &ms[i]
		m.Reasons = explain.Explain(m.A.Row, m.B.Row, m.A.Score, m.B.Score,
			&explain.Positions{A: m.A.Position, B: m.B.Position})
	}
	return ms
}
