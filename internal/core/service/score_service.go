package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/api/metrics"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const maxReconcileAttempts = 3

// ScoreService keeps the points and badges stored on a user in line with the
// activity ledger.
type ScoreService struct {
	users  ports.UserStore
	ledger ports.ActivityLedger
	log    zerolog.Logger
}

func NewScoreService(users ports.UserStore, ledger ports.ActivityLedger, log zerolog.Logger) *ScoreService {
	return &ScoreService{users: users, ledger: ledger, log: log}
}

// Reconcile recomputes the user's score from fresh activity counts and writes
// it back when the stored fields have drifted. The computed snapshot is
// returned whether or not a write happened.
func (s *ScoreService) Reconcile(ctx context.Context, userID string) (*domain.ScoreSnapshot, error) {
	timer := prometheus.NewTimer(metrics.ScoreReconcileDuration)
	defer timer.ObserveDuration()

	var snapshot *domain.ScoreSnapshot
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		stored, err := s.users.GetScoreFields(ctx, userID)
		if err != nil {
			metrics.ScoreReconciliationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("reconcile score: %w", err)
		}

		computed, activity, err := s.compute(ctx, userID)
		if err != nil {
			metrics.ScoreReconciliationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("reconcile score: %w", err)
		}
		snapshot = &domain.ScoreSnapshot{
			Points:        computed.Points,
			Badges:        computed.Badges,
			IssuesCreated: activity.IssuesCreated,
			VotesCast:     activity.VotesCast,
		}

		if computed.Matches(stored) {
			metrics.ScoreReconciliationsTotal.WithLabelValues("clean").Inc()
			return snapshot, nil
		}

		swapped, err := s.users.CompareAndSetScoreFields(ctx, userID, stored, computed)
		if err != nil {
			metrics.ScoreReconciliationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("reconcile score: write: %w", err)
		}
		if swapped {
			metrics.ScoreReconciliationsTotal.WithLabelValues("drift").Inc()
			s.log.Info().
				Str("user_id", userID).
				Int("stored_points", stored.Points).
				Int("points", computed.Points).
				Strs("badges", computed.Badges).
				Msg("score drift corrected")
			return snapshot, nil
		}

		s.log.Debug().Str("user_id", userID).Int("attempt", attempt).Msg("score changed concurrently, retrying")
	}

	// Another writer kept winning. It holds an equally fresh view of the
	// ledger, so the computed value is still correct to report.
	metrics.ScoreReconciliationsTotal.WithLabelValues("conflict").Inc()
	s.log.Warn().Str("user_id", userID).Msg("score reconciliation gave up after concurrent writes")
	return snapshot, nil
}

func (s *ScoreService) compute(ctx context.Context, userID string) (domain.Score, domain.Activity, error) {
	issues, err := s.ledger.CountIssuesCreatedBy(ctx, userID)
	if err != nil {
		return domain.Score{}, domain.Activity{}, fmt.Errorf("count issues: %w", err)
	}
	votes, err := s.ledger.CountVotesCastBy(ctx, userID)
	if err != nil {
		return domain.Score{}, domain.Activity{}, fmt.Errorf("count votes: %w", err)
	}

	activity := domain.Activity{IssuesCreated: int(issues), VotesCast: int(votes)}
	score, err := domain.ComputeScore(activity)
	if err != nil {
		return domain.Score{}, domain.Activity{}, err
	}
	return score, activity, nil
}
