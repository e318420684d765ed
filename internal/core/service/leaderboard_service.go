package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const DefaultLeaderboardSize = 50

type LeaderboardService struct {
	users  ports.UserStore
	scores ports.ScoreService
	size   int
	log    zerolog.Logger
}

func NewLeaderboardService(users ports.UserStore, scores ports.ScoreService, size int, log zerolog.Logger) *LeaderboardService {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &LeaderboardService{users: users, scores: scores, size: size, log: log}
}

// Leaderboard returns the top users with freshly reconciled scores. Candidates
// are selected by stored points; reconciliation may reorder them before ranking.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.RankedEntry, error) {
	users, err := s.users.ListUsersByPointsDescending(ctx, s.size)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	candidates := make([]domain.LeaderboardCandidate, 0, len(users))
	for _, u := range users {
		snap, err := s.scores.Reconcile(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		candidates = append(candidates, domain.LeaderboardCandidate{
			UserID:        u.ID,
			Name:          u.Name,
			Points:        snap.Points,
			Badges:        snap.Badges,
			IssuesCreated: snap.IssuesCreated,
			VotesCast:     snap.VotesCast,
		})
	}

	s.log.Debug().Int("entries", len(candidates)).Msg("leaderboard built")
	return domain.Rank(candidates), nil
}
