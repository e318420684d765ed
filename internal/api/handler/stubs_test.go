package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/api/middleware"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubIssueService struct {
	createFn func(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error)
	getFn    func(ctx context.Context, issueID, viewerID string) (*ports.IssueView, error)
	listFn   func(ctx context.Context, in ports.ListIssuesInput) (*ports.IssuePage, error)
	mineFn   func(ctx context.Context, userID string) ([]ports.IssueView, error)
	mapFn    func(ctx context.Context) ([]*domain.Issue, error)
	updateFn func(ctx context.Context, in ports.UpdateIssueInput) (*domain.Issue, error)
	deleteFn func(ctx context.Context, issueID, userID string) error
}

func (s *stubIssueService) Create(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error) {
	return s.createFn(ctx, in)
}

func (s *stubIssueService) Get(ctx context.Context, issueID, viewerID string) (*ports.IssueView, error) {
	return s.getFn(ctx, issueID, viewerID)
}

func (s *stubIssueService) List(ctx context.Context, in ports.ListIssuesInput) (*ports.IssuePage, error) {
	return s.listFn(ctx, in)
}

func (s *stubIssueService) ListMine(ctx context.Context, userID string) ([]ports.IssueView, error) {
	return s.mineFn(ctx, userID)
}

func (s *stubIssueService) MapIssues(ctx context.Context) ([]*domain.Issue, error) {
	return s.mapFn(ctx)
}

func (s *stubIssueService) Update(ctx context.Context, in ports.UpdateIssueInput) (*domain.Issue, error) {
	return s.updateFn(ctx, in)
}

func (s *stubIssueService) Delete(ctx context.Context, issueID, userID string) error {
	return s.deleteFn(ctx, issueID, userID)
}

type stubVoteService struct {
	castFn    func(ctx context.Context, issueID, userID string) (*ports.VoteResult, error)
	retractFn func(ctx context.Context, issueID, userID string) (*ports.VoteResult, error)
}

func (s *stubVoteService) Cast(ctx context.Context, issueID, userID string) (*ports.VoteResult, error) {
	return s.castFn(ctx, issueID, userID)
}

func (s *stubVoteService) Retract(ctx context.Context, issueID, userID string) (*ports.VoteResult, error) {
	return s.retractFn(ctx, issueID, userID)
}

type stubScoreService struct {
	reconcileFn func(ctx context.Context, userID string) (*domain.ScoreSnapshot, error)
}

func (s *stubScoreService) Reconcile(ctx context.Context, userID string) (*domain.ScoreSnapshot, error) {
	return s.reconcileFn(ctx, userID)
}

type stubProfileService struct {
	statsFn func(ctx context.Context, userID string) (*ports.UserStats, error)
}

func (s *stubProfileService) Stats(ctx context.Context, userID string) (*ports.UserStats, error) {
	return s.statsFn(ctx, userID)
}

type stubLimiter struct {
	usageFn func(ctx context.Context, userID string) (*ports.Quota, error)
}

func (s *stubLimiter) CheckAndIncrement(context.Context, string) (bool, error) { return true, nil }
func (s *stubLimiter) Release(context.Context, string) error                 { return nil }
func (s *stubLimiter) Usage(ctx context.Context, userID string) (*ports.Quota, error) {
	return s.usageFn(ctx, userID)
}

type stubLeaderboard struct {
	entries []domain.RankedEntry
	err     error
}

func (s *stubLeaderboard) Leaderboard(context.Context) ([]domain.RankedEntry, error) {
	return s.entries, s.err
}

type stubAnalytics struct {
	summary *ports.AnalyticsSummary
	err     error
}

func (s *stubAnalytics) Summary(context.Context) (*ports.AnalyticsSummary, error) {
	return s.summary, s.err
}

type stubDispatcher struct {
	accepted, dropped int
	err               error
}

func (s *stubDispatcher) EnqueueAll(context.Context) (int, int, error) {
	return s.accepted, s.dropped, s.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newContext builds an echo context with the validator installed and, when
// userID is non-empty, the claims the Auth middleware would have set.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.CtxUserID, userID)
	}
	return c, rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}
