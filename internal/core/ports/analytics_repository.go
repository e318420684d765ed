package ports

import (
	"context"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// IssueCountFilter narrows an issue count. Zero values disable a condition;
// ranges are half-open [From, To).
type IssueCountFilter struct {
	Statuses    []domain.IssueStatus
	CreatedFrom time.Time
	CreatedTo   time.Time
	UpdatedFrom time.Time
	UpdatedTo   time.Time
}

// AnalyticsRepository runs the aggregate queries behind the analytics dashboard.
type AnalyticsRepository interface {
	IssuesByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	CountIssues(ctx context.Context, filter IssueCountFilter) (int64, error)
	CountVotes(ctx context.Context, from, to time.Time) (int64, error)
	// TopVotedIssues ranks the most recent `recent` issues by vote count and
	// returns the first `top`.
	TopVotedIssues(ctx context.Context, recent, top int) ([]domain.IssueVoteCount, error)
	// ResolutionTimes returns, per category, the average hours between creation
	// and the last update of resolved issues.
	ResolutionTimes(ctx context.Context) ([]ResolutionTime, error)
}

type ResolutionTime struct {
	Category domain.IssueCategory
	AvgHours float64
	Resolved int64
}
