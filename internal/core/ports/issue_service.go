package ports

import (
	"context"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// CreateIssueInput carries all data needed to report a new issue.
type CreateIssueInput struct {
	UserID      string
	Title       string
	Description string
	Category    domain.IssueCategory
	Location    string
	ImageURL    string
	// Coordinates are stored only when both are present.
	Latitude  *float64
	Longitude *float64
}

// UpdateIssueInput carries an edit from the issue creator. Nil fields are kept.
type UpdateIssueInput struct {
	IssueID     string
	UserID      string
	Title       *string
	Description *string
	Category    *domain.IssueCategory
	Location    *string
	ImageURL    *string
	Latitude    *float64
	Longitude   *float64
}

// ListIssuesInput is a list query on behalf of an optional viewer.
type ListIssuesInput struct {
	ListIssuesFilter
	ViewerID string // empty for anonymous callers
}

// IssueView is an issue enriched with its vote tally for a given viewer.
type IssueView struct {
	Issue        *domain.Issue
	Votes        int64
	UserHasVoted bool
}

// IssuePage is a single page of a list query.
type IssuePage struct {
	Issues     []IssueView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// VoteResult is returned after casting or retracting a vote.
type VoteResult struct {
	Votes        int64
	UserHasVoted bool
}

// IssueService exposes the issue lifecycle.
type IssueService interface {
	Create(ctx context.Context, in CreateIssueInput) (*domain.Issue, error)
	Get(ctx context.Context, issueID, viewerID string) (*IssueView, error)
	List(ctx context.Context, in ListIssuesInput) (*IssuePage, error)
	ListMine(ctx context.Context, userID string) ([]IssueView, error)
	MapIssues(ctx context.Context) ([]*domain.Issue, error)
	Update(ctx context.Context, in UpdateIssueInput) (*domain.Issue, error)
	Delete(ctx context.Context, issueID, userID string) error
}

// VoteService records and retracts upvotes.
type VoteService interface {
	Cast(ctx context.Context, issueID, userID string) (*VoteResult, error)
	Retract(ctx context.Context, issueID, userID string) (*VoteResult, error)
}

// Quota describes how much of the issue creation window a user has consumed.
type Quota struct {
	Used      int
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// RateLimiter bounds how many issues a user can create per window.
type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
	Usage(ctx context.Context, userID string) (*Quota, error)
}
