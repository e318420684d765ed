package ports

import (
	"context"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// ScoreService reconciles stored score fields with the activity ledger.
type ScoreService interface {
	Reconcile(ctx context.Context, userID string) (*domain.ScoreSnapshot, error)
}

// VoteActivity is a vote joined with the title of the issue it targets.
type VoteActivity struct {
	IssueID    string
	IssueTitle string
	CreatedAt  time.Time
}

type ActivityKind string

const (
	ActivityIssue ActivityKind = "issue"
	ActivityVote  ActivityKind = "vote"
)

// ActivityItem is one entry of a user's recent contribution feed.
type ActivityItem struct {
	Kind    ActivityKind
	IssueID string
	Title   string
	Points  int
	At      time.Time
}

// UserStats is the profile dashboard of a single user.
type UserStats struct {
	domain.ScoreSnapshot
	Rank           int64
	IssuesResolved int64
	RecentActivity []ActivityItem
}

type ProfileService interface {
	Stats(ctx context.Context, userID string) (*UserStats, error)
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]domain.RankedEntry, error)
}

// AnalyticsSummary is the community-wide dashboard.
type AnalyticsSummary struct {
	IssuesByCategory     []domain.CategoryCount
	Last7Days            []domain.DailyCount
	TopVoted             []domain.IssueVoteCount
	TotalIssues          int64
	TotalVotes           int64
	OpenIssues           int64
	IssueTrend           domain.Trend
	VoteTrend            domain.Trend
	ResolutionTrend      domain.Trend
	ResolutionByCategory []domain.CategoryResolution
}

type AnalyticsService interface {
	Summary(ctx context.Context) (*AnalyticsSummary, error)
}
