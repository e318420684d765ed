package ports

import (
	"context"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

type IssueSort string

const (
	SortNewest IssueSort = "newest"
	SortOldest IssueSort = "oldest"
)

// ListIssuesFilter carries all query parameters for listing issues.
type ListIssuesFilter struct {
	Category string    // optional: exact category
	Status   string    // optional: exact status
	Search   string    // optional: case-insensitive match on title or description
	Sort     IssueSort // newest (default) or oldest
	Page     int       // 1-based
	Limit    int       // capped at 100 by the service
}

// IssueChanges holds the editable fields of an issue. Nil fields are left untouched.
type IssueChanges struct {
	Title       *string
	Description *string
	Category    *domain.IssueCategory
	Location    *string
	ImageURL    *string
	Coordinates *domain.Coordinates
	UpdatedAt   time.Time
}

// IssueRepository defines persistence operations for issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	// UpdatePending applies changes only while the issue is still pending and
	// returns domain.ErrIssueLocked otherwise.
	UpdatePending(ctx context.Context, id string, changes IssueChanges) (*domain.Issue, error)
	// DeletePending removes the issue only while it is still pending and
	// returns domain.ErrIssueLocked otherwise.
	DeletePending(ctx context.Context, id string) error
	List(ctx context.Context, filter ListIssuesFilter) ([]*domain.Issue, int64, error)
	ListByCreator(ctx context.Context, userID string, limit int) ([]*domain.Issue, error)
	ListWithCoordinates(ctx context.Context) ([]*domain.Issue, error)
	CountByCreatorAndStatus(ctx context.Context, userID string, status domain.IssueStatus) (int64, error)
}
