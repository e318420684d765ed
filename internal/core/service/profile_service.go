package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const (
	recentIssues   = 3
	recentVotes    = 2
	recentActivity = 5
)

type ProfileService struct {
	users  ports.UserStore
	issues ports.IssueRepository
	ledger ports.ActivityLedger
	scores ports.ScoreService
}

func NewProfileService(users ports.UserStore, issues ports.IssueRepository, ledger ports.ActivityLedger, scores ports.ScoreService) *ProfileService {
	return &ProfileService{users: users, issues: issues, ledger: ledger, scores: scores}
}

// Stats builds the user's dashboard. The score is reconciled first, so the
// rank is computed against the user's current points.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*ports.UserStats, error) {
	snap, err := s.scores.Reconcile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	above, err := s.users.CountUsersRankedAbove(ctx, userID, snap.Points)
	if err != nil {
		return nil, fmt.Errorf("user stats: rank: %w", err)
	}

	resolved, err := s.issues.CountByCreatorAndStatus(ctx, userID, domain.IssueStatusResolved)
	if err != nil {
		return nil, fmt.Errorf("user stats: resolved: %w", err)
	}

	activity, err := s.recentActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	return &ports.UserStats{
		ScoreSnapshot:  *snap,
		Rank:           above + 1,
		IssuesResolved: resolved,
		RecentActivity: activity,
	}, nil
}

func (s *ProfileService) recentActivity(ctx context.Context, userID string) ([]ports.ActivityItem, error) {
	issues, err := s.issues.ListByCreator(ctx, userID, recentIssues)
	if err != nil {
		return nil, fmt.Errorf("recent issues: %w", err)
	}
	votes, err := s.ledger.RecentVotesBy(ctx, userID, recentVotes)
	if err != nil {
		return nil, fmt.Errorf("recent votes: %w", err)
	}

	items := make([]ports.ActivityItem, 0, len(issues)+len(votes))
	for _, issue := range issues {
		items = append(items, ports.ActivityItem{
			Kind:    ports.ActivityIssue,
			IssueID: issue.ID,
			Title:   issue.Title,
			Points:  domain.PointsPerIssue,
			At:      issue.CreatedAt,
		})
	}
	for _, v := range votes {
		items = append(items, ports.ActivityItem{
			Kind:    ports.ActivityVote,
			IssueID: v.IssueID,
			Title:   v.IssueTitle,
			Points:  domain.PointsPerVote,
			At:      v.CreatedAt,
		})
	}

	slices.SortStableFunc(items, func(a, b ports.ActivityItem) int {
		return cmp.Compare(b.At.UnixNano(), a.At.UnixNano())
	})
	if len(items) > recentActivity {
		items = items[:recentActivity]
	}
	return items, nil
}
