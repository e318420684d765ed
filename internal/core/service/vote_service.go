package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/api/metrics"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

type VoteService struct {
	issues ports.IssueRepository
	ledger ports.ActivityLedger
	scores ports.ScoreService
	log    zerolog.Logger
}

func NewVoteService(issues ports.IssueRepository, ledger ports.ActivityLedger, scores ports.ScoreService, log zerolog.Logger) *VoteService {
	return &VoteService{issues: issues, ledger: ledger, scores: scores, log: log}
}

// Cast upvotes an issue. A second vote by the same user is rejected by the
// ledger's uniqueness constraint with domain.ErrAlreadyVoted.
func (s *VoteService) Cast(ctx context.Context, issueID, userID string) (*ports.VoteResult, error) {
	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return nil, err
	}

	err := s.ledger.InsertVote(ctx, &domain.Vote{
		IssueID:   issueID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	metrics.VotesTotal.WithLabelValues("cast").Inc()

	return s.afterVote(ctx, issueID, userID, true)
}

// Retract removes the user's vote. domain.ErrNotVoted is returned when there
// was nothing to remove.
func (s *VoteService) Retract(ctx context.Context, issueID, userID string) (*ports.VoteResult, error) {
	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return nil, err
	}

	deleted, err := s.ledger.DeleteVote(ctx, issueID, userID)
	if err != nil {
		return nil, fmt.Errorf("retract vote: %w", err)
	}
	if deleted == 0 {
		return nil, domain.ErrNotVoted
	}
	metrics.VotesTotal.WithLabelValues("retract").Inc()

	return s.afterVote(ctx, issueID, userID, false)
}

func (s *VoteService) afterVote(ctx context.Context, issueID, userID string, voted bool) (*ports.VoteResult, error) {
	s.log.Info().Str("issue_id", issueID).Str("user_id", userID).Bool("voted", voted).Msg("vote recorded")

	if _, err := s.scores.Reconcile(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("score reconciliation after vote failed")
	}

	votes, err := s.ledger.CountVotesForIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	return &ports.VoteResult{Votes: votes, UserHasVoted: voted}, nil
}
