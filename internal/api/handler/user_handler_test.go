package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

func newUserHandler(profile *stubProfileService, scores *stubScoreService, limiter *stubLimiter, lb *stubLeaderboard) *UserHandler {
	return NewUserHandler(profile, scores, limiter, lb)
}

func TestUserHandler_Score_EmptyBadgesRenderAsArray(t *testing.T) {
	scores := &stubScoreService{
		reconcileFn: func(_ context.Context, userID string) (*domain.ScoreSnapshot, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user %q", userID)
			}
			return &domain.ScoreSnapshot{}, nil
		},
	}
	h := newUserHandler(nil, scores, nil, nil)

	c, rec := newContext(http.MethodGet, "/v1/me/score", "", "u1")
	if err := h.Score(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"badges":[]`) {
		t.Fatalf("expected an empty badges array, got %s", rec.Body.String())
	}
}

func TestUserHandler_Stats(t *testing.T) {
	profile := &stubProfileService{
		statsFn: func(context.Context, string) (*ports.UserStats, error) {
			return &ports.UserStats{
				ScoreSnapshot: domain.ScoreSnapshot{
					Points:        25,
					Badges:        []string{domain.BadgeFirstIssue},
					IssuesCreated: 2,
					VotesCast:     1,
				},
				Rank:           3,
				IssuesResolved: 1,
				RecentActivity: []ports.ActivityItem{
					{Kind: ports.ActivityVote, IssueID: "i9", Title: "Broken light", Points: 5, At: fixedTime},
				},
			}, nil
		},
	}
	h := newUserHandler(profile, nil, nil, nil)

	c, rec := newContext(http.MethodGet, "/v1/me/stats", "", "u1")
	if err := h.Stats(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Points != 25 || resp.Rank != 3 || resp.IssuesResolved != 1 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
	if len(resp.RecentActivity) != 1 || resp.RecentActivity[0].Type != "vote" {
		t.Fatalf("unexpected activity: %+v", resp.RecentActivity)
	}
}

func TestUserHandler_Stats_UserNotFound(t *testing.T) {
	profile := &stubProfileService{
		statsFn: func(context.Context, string) (*ports.UserStats, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := newUserHandler(profile, nil, nil, nil)

	c, _ := newContext(http.MethodGet, "/v1/me/stats", "", "u1")
	if err := h.Stats(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Quota(t *testing.T) {
	limiter := &stubLimiter{
		usageFn: func(context.Context, string) (*ports.Quota, error) {
			return &ports.Quota{Used: 1, Limit: 2, Remaining: 1, ResetIn: 90 * time.Minute}, nil
		},
	}
	h := newUserHandler(nil, nil, limiter, nil)

	c, rec := newContext(http.MethodGet, "/v1/me/quota", "", "u1")
	if err := h.Quota(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp quotaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Remaining != 1 || resp.ResetInSeconds != 5400 {
		t.Fatalf("unexpected quota: %+v", resp)
	}
}

func TestUserHandler_Leaderboard(t *testing.T) {
	lb := &stubLeaderboard{entries: domain.Rank([]domain.LeaderboardCandidate{
		{UserID: "a", Name: "A", Points: 50},
		{UserID: "b", Name: "B", Points: 80, Badges: []string{domain.BadgeFirstIssue}},
	})}
	h := newUserHandler(nil, nil, nil, lb)

	c, rec := newContext(http.MethodGet, "/v1/leaderboard", "", "u1")
	if err := h.Leaderboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp leaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].UserID != "b" || resp.Data[0].Rank != 1 || resp.Data[1].Rank != 2 {
		t.Fatalf("unexpected leaderboard: %+v", resp.Data)
	}
	if resp.Data[1].Badges == nil {
		t.Fatalf("badges must decode as an empty array")
	}
}

func TestAdminHandler_Rescore(t *testing.T) {
	scores := &stubScoreService{
		reconcileFn: func(_ context.Context, userID string) (*domain.ScoreSnapshot, error) {
			return &domain.ScoreSnapshot{Points: 10, Badges: []string{domain.BadgeFirstIssue}, IssuesCreated: 1}, nil
		},
	}
	h := NewAdminHandler(scores, &stubDispatcher{})

	c, rec := newContext(http.MethodPost, "/v1/admin/users/u7/rescore", "", "admin1")
	c.SetParamNames("id")
	c.SetParamValues("u7")
	if err := h.Rescore(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp rescoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "u7" || resp.Points != 10 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_RescoreAll(t *testing.T) {
	h := NewAdminHandler(&stubScoreService{}, &stubDispatcher{accepted: 40, dropped: 2})

	c, rec := newContext(http.MethodPost, "/v1/admin/rescore", "", "admin1")
	if err := h.RescoreAll(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp rescoreAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Accepted != 40 || resp.Dropped != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	svc := &stubAnalytics{summary: &ports.AnalyticsSummary{
		IssuesByCategory: []domain.CategoryCount{{Category: domain.CategoryWater, Count: 4}},
		Last7Days:        []domain.DailyCount{{Date: "2026-03-01", Count: 2}},
		TotalIssues:      4,
		OpenIssues:       3,
		IssueTrend:       domain.NewTrend(4, 2),
	}}
	h := NewAnalyticsHandler(svc)

	c, rec := newContext(http.MethodGet, "/v1/analytics", "", "u1")
	if err := h.Summary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp analyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Totals.Open != 3 || resp.Trends.Issues.Growth != 100 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
	if len(resp.IssuesByCategory) != 1 || resp.IssuesByCategory[0].Category != "Water" {
		t.Fatalf("unexpected categories: %+v", resp.IssuesByCategory)
	}
}

func TestHealthDependencies_Readiness(t *testing.T) {
	h := NewHealthChecks(map[string]DependencyCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	c, rec := newContext(http.MethodGet, "/health/ready", "", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != "ok" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}
