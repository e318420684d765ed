package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const (
	topVotedRecent = 50
	topVotedCount  = 5
	dailyWindow    = 7
	day            = 24 * time.Hour
)

var openStatuses = []domain.IssueStatus{domain.IssueStatusPending, domain.IssueStatusInProgress}

type AnalyticsService struct {
	repo ports.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo ports.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Summary computes the community dashboard relative to the current time.
func (s *AnalyticsService) Summary(ctx context.Context) (*ports.AnalyticsSummary, error) {
	now := s.now().UTC()
	out := &ports.AnalyticsSummary{}
	var err error

	if out.IssuesByCategory, err = s.repo.IssuesByCategory(ctx); err != nil {
		return nil, fmt.Errorf("analytics: by category: %w", err)
	}
	if out.Last7Days, err = s.lastDays(ctx, now); err != nil {
		return nil, fmt.Errorf("analytics: daily counts: %w", err)
	}
	if out.TopVoted, err = s.repo.TopVotedIssues(ctx, topVotedRecent, topVotedCount); err != nil {
		return nil, fmt.Errorf("analytics: top voted: %w", err)
	}

	if out.TotalIssues, err = s.repo.CountIssues(ctx, ports.IssueCountFilter{}); err != nil {
		return nil, fmt.Errorf("analytics: total issues: %w", err)
	}
	if out.TotalVotes, err = s.repo.CountVotes(ctx, time.Time{}, time.Time{}); err != nil {
		return nil, fmt.Errorf("analytics: total votes: %w", err)
	}
	if out.OpenIssues, err = s.repo.CountIssues(ctx, ports.IssueCountFilter{Statuses: openStatuses}); err != nil {
		return nil, fmt.Errorf("analytics: open issues: %w", err)
	}

	if out.IssueTrend, err = s.issueTrend(ctx, now); err != nil {
		return nil, fmt.Errorf("analytics: issue trend: %w", err)
	}
	if out.VoteTrend, err = s.voteTrend(ctx, now); err != nil {
		return nil, fmt.Errorf("analytics: vote trend: %w", err)
	}
	if out.ResolutionTrend, err = s.resolutionTrend(ctx, now); err != nil {
		return nil, fmt.Errorf("analytics: resolution trend: %w", err)
	}

	times, err := s.repo.ResolutionTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: resolution times: %w", err)
	}
	out.ResolutionByCategory = make([]domain.CategoryResolution, 0, len(times))
	for _, rt := range times {
		out.ResolutionByCategory = append(out.ResolutionByCategory, domain.CategoryResolution{
			Category: rt.Category,
			AvgDays:  math.Round(rt.AvgHours/24*10) / 10,
			Resolved: rt.Resolved,
		})
	}

	return out, nil
}

// lastDays counts issues created on each of the last seven UTC calendar days,
// oldest first, today included.
func (s *AnalyticsService) lastDays(ctx context.Context, now time.Time) ([]domain.DailyCount, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]domain.DailyCount, 0, dailyWindow)
	for i := dailyWindow - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		n, err := s.repo.CountIssues(ctx, ports.IssueCountFilter{
			CreatedFrom: start,
			CreatedTo:   start.AddDate(0, 0, 1),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DailyCount{Date: start.Format(time.DateOnly), Count: n})
	}
	return out, nil
}

func (s *AnalyticsService) issueTrend(ctx context.Context, now time.Time) (domain.Trend, error) {
	mid, start := now.Add(-30*day), now.Add(-60*day)
	cur, err := s.repo.CountIssues(ctx, ports.IssueCountFilter{CreatedFrom: mid, CreatedTo: now})
	if err != nil {
		return domain.Trend{}, err
	}
	prev, err := s.repo.CountIssues(ctx, ports.IssueCountFilter{CreatedFrom: start, CreatedTo: mid})
	if err != nil {
		return domain.Trend{}, err
	}
	return domain.NewTrend(cur, prev), nil
}

func (s *AnalyticsService) voteTrend(ctx context.Context, now time.Time) (domain.Trend, error) {
	mid, start := now.Add(-7*day), now.Add(-14*day)
	cur, err := s.repo.CountVotes(ctx, mid, now)
	if err != nil {
		return domain.Trend{}, err
	}
	prev, err := s.repo.CountVotes(ctx, start, mid)
	if err != nil {
		return domain.Trend{}, err
	}
	return domain.NewTrend(cur, prev), nil
}

// resolutionTrend uses the last update as the resolution time.
func (s *AnalyticsService) resolutionTrend(ctx context.Context, now time.Time) (domain.Trend, error) {
	resolved := []domain.IssueStatus{domain.IssueStatusResolved}
	mid, start := now.Add(-7*day), now.Add(-14*day)
	cur, err := s.repo.CountIssues(ctx, ports.IssueCountFilter{Statuses: resolved, UpdatedFrom: mid, UpdatedTo: now})
	if err != nil {
		return domain.Trend{}, err
	}
	prev, err := s.repo.CountIssues(ctx, ports.IssueCountFilter{Statuses: resolved, UpdatedFrom: start, UpdatedTo: mid})
	if err != nil {
		return domain.Trend{}, err
	}
	return domain.NewTrend(cur, prev), nil
}
