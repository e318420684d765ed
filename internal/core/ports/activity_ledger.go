package ports

import (
	"context"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// ActivityLedger is the authoritative record of issues created and votes cast.
// Score reconciliation always counts from here.
type ActivityLedger interface {
	CountIssuesCreatedBy(ctx context.Context, userID string) (int64, error)
	CountVotesCastBy(ctx context.Context, userID string) (int64, error)

	VoteExists(ctx context.Context, issueID, userID string) (bool, error)
	// InsertVote returns domain.ErrAlreadyVoted when the pair already exists.
	InsertVote(ctx context.Context, v *domain.Vote) error
	DeleteVote(ctx context.Context, issueID, userID string) (int64, error)
	// DeleteAllVotesForIssue removes every vote on the issue and returns the
	// ids of the users whose votes were removed.
	DeleteAllVotesForIssue(ctx context.Context, issueID string) ([]string, error)

	CountVotesForIssue(ctx context.Context, issueID string) (int64, error)
	CountVotesForIssues(ctx context.Context, issueIDs []string) (map[string]int64, error)
	// VotedIssues returns the subset of issueIDs the user voted on.
	VotedIssues(ctx context.Context, userID string, issueIDs []string) (map[string]bool, error)
	RecentVotesBy(ctx context.Context, userID string, limit int) ([]VoteActivity, error)
}
