package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/api/metrics"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type IssueService struct {
	issues  ports.IssueRepository
	ledger  ports.ActivityLedger
	limiter ports.RateLimiter
	scores  ports.ScoreService
	log     zerolog.Logger
	now     func() time.Time
}

func NewIssueService(
	issues ports.IssueRepository,
	ledger ports.ActivityLedger,
	limiter ports.RateLimiter,
	scores ports.ScoreService,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		issues:  issues,
		ledger:  ledger,
		limiter: limiter,
		scores:  scores,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create reports a new issue on behalf of the user. The rate limiter is
// consulted first; a slot taken for an issue that fails to persist is given back.
func (s *IssueService) Create(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error) {
	allowed, err := s.limiter.CheckAndIncrement(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	if !allowed {
		return nil, s.rateLimitError(ctx, in.UserID)
	}

	now := s.now()
	issue := &domain.Issue{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		Status:      domain.IssueStatusPending,
		CreatedBy:   in.UserID,
		Coordinates: coordinates(in.Latitude, in.Longitude),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		if relErr := s.limiter.Release(ctx, in.UserID); relErr != nil {
			s.log.Warn().Err(relErr).Str("user_id", in.UserID).Msg("failed to release rate limit slot")
		}
		s.log.Error().Err(err).Str("user_id", in.UserID).Msg("failed to create issue")
		return nil, fmt.Errorf("create issue: %w", err)
	}

	metrics.IssuesCreatedTotal.WithLabelValues(string(issue.Category)).Inc()
	s.log.Info().Str("issue_id", issue.ID).Str("user_id", in.UserID).Str("category", string(issue.Category)).Msg("issue created")

	s.reconcile(ctx, in.UserID)
	return issue, nil
}

func (s *IssueService) rateLimitError(ctx context.Context, userID string) error {
	rle := &domain.RateLimitError{}
	quota, err := s.limiter.Usage(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to read rate limit usage")
		return rle
	}
	rle.Limit = quota.Limit
	rle.RetryAfter = quota.ResetIn
	return rle
}

// Get returns a single issue with its vote tally. viewerID may be empty.
func (s *IssueService) Get(ctx context.Context, issueID, viewerID string) (*ports.IssueView, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	votes, err := s.ledger.CountVotesForIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("get issue: count votes: %w", err)
	}

	view := &ports.IssueView{Issue: issue, Votes: votes}
	if viewerID != "" {
		view.UserHasVoted, err = s.ledger.VoteExists(ctx, issueID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("get issue: vote lookup: %w", err)
		}
	}
	return view, nil
}

// List returns a page of issues. Page defaults to 1 and limit to 10, capped at 100.
func (s *IssueService) List(ctx context.Context, in ports.ListIssuesInput) (*ports.IssuePage, error) {
	f := in.ListIssuesFilter
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	if f.Sort != ports.SortOldest {
		f.Sort = ports.SortNewest
	}

	issues, total, err := s.issues.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	views, err := s.withVotes(ctx, issues, in.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ports.IssuePage{
		Issues:     views,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListMine returns every issue the user reported, newest first.
func (s *IssueService) ListMine(ctx context.Context, userID string) ([]ports.IssueView, error) {
	issues, err := s.issues.ListByCreator(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list own issues: %w", err)
	}
	views, err := s.withVotes(ctx, issues, userID)
	if err != nil {
		return nil, fmt.Errorf("list own issues: %w", err)
	}
	return views, nil
}

// MapIssues returns the issues that carry coordinates, newest first.
func (s *IssueService) MapIssues(ctx context.Context) ([]*domain.Issue, error) {
	issues, err := s.issues.ListWithCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("map issues: %w", err)
	}
	return issues, nil
}

func (s *IssueService) withVotes(ctx context.Context, issues []*domain.Issue, viewerID string) ([]ports.IssueView, error) {
	views := make([]ports.IssueView, 0, len(issues))
	if len(issues) == 0 {
		return views, nil
	}

	ids := make([]string, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
	}

	counts, err := s.ledger.CountVotesForIssues(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	voted := map[string]bool{}
	if viewerID != "" {
		voted, err = s.ledger.VotedIssues(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("vote lookup: %w", err)
		}
	}

	for _, issue := range issues {
		views = append(views, ports.IssueView{
			Issue:        issue,
			Votes:        counts[issue.ID],
			UserHasVoted: voted[issue.ID],
		})
	}
	return views, nil
}

// Update edits a pending issue on behalf of its creator.
func (s *IssueService) Update(ctx context.Context, in ports.UpdateIssueInput) (*domain.Issue, error) {
	issue, err := s.issues.FindByID(ctx, in.IssueID)
	if err != nil {
		return nil, err
	}
	if err := issue.CheckEditableBy(in.UserID); err != nil {
		return nil, err
	}

	changes := ports.IssueChanges{
		Title:       nonEmpty(in.Title),
		Description: nonEmpty(in.Description),
		Location:    nonEmpty(in.Location),
		ImageURL:    in.ImageURL,
		Coordinates: coordinates(in.Latitude, in.Longitude),
		UpdatedAt:   s.now(),
	}
	if in.Category != nil && *in.Category != "" {
		changes.Category = in.Category
	}

	updated, err := s.issues.UpdatePending(ctx, in.IssueID, changes)
	if err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}

	s.log.Info().Str("issue_id", in.IssueID).Str("user_id", in.UserID).Msg("issue updated")
	return updated, nil
}

// Delete withdraws a pending issue. Its votes go with it, the creator gets the
// rate limit slot back and every affected score is reconciled.
func (s *IssueService) Delete(ctx context.Context, issueID, userID string) error {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return err
	}
	if err := issue.CheckEditableBy(userID); err != nil {
		return err
	}

	// Votes go first: an orphaned vote would keep counting toward its voter.
	voters, err := s.ledger.DeleteAllVotesForIssue(ctx, issueID)
	if err != nil {
		return fmt.Errorf("delete issue: remove votes: %w", err)
	}

	if err := s.issues.DeletePending(ctx, issueID); err != nil {
		s.reconcileAll(ctx, voters, "")
		return fmt.Errorf("delete issue: %w", err)
	}

	if err := s.limiter.Release(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to release rate limit slot")
	}

	metrics.IssuesDeletedTotal.Inc()
	s.log.Info().Str("issue_id", issueID).Str("user_id", userID).Int("votes_removed", len(voters)).Msg("issue deleted")

	s.reconcile(ctx, userID)
	s.reconcileAll(ctx, voters, userID)
	return nil
}

// reconcileAll refreshes every voter except skip.
func (s *IssueService) reconcileAll(ctx context.Context, voters []string, skip string) {
	for _, voter := range voters {
		if voter != skip {
			s.reconcile(ctx, voter)
		}
	}
}

// reconcile refreshes a score after a committed mutation. Failure does not
// undo the mutation; the next read reconciles again.
func (s *IssueService) reconcile(ctx context.Context, userID string) {
	if _, err := s.scores.Reconcile(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("score reconciliation after mutation failed")
	}
}

func coordinates(lat, lng *float64) *domain.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *lat, Lng: *lng}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
