package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory user store
// ---------------------------------------------------------------------------

type memUsers struct {
	mu     sync.Mutex
	order  []string
	byID   map[string]*domain.User
	getErr error
	casErr error
	// beforeCAS runs inside CompareAndSetScoreFields before the comparison,
	// simulating a concurrent writer.
	beforeCAS func(u *domain.User)
	casCalls  int
}

func newMemUsers(ids ...string) *memUsers {
	m := &memUsers{byID: map[string]*domain.User{}}
	for _, id := range ids {
		m.add(&domain.User{ID: id, Name: "user " + id})
	}
	return m
}

func (m *memUsers) add(u *domain.User) {
	m.order = append(m.order, u.ID)
	m.byID[u.ID] = u
}

func (m *memUsers) stored(id string) domain.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	return domain.Score{Points: u.Points, Badges: slices.Clone(u.Badges)}
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) GetScoreFields(_ context.Context, id string) (domain.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Score{}, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return domain.Score{}, domain.ErrUserNotFound
	}
	return domain.Score{Points: u.Points, Badges: slices.Clone(u.Badges)}, nil
}

func (m *memUsers) CompareAndSetScoreFields(_ context.Context, id string, expected, next domain.Score) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.casCalls++
	if m.casErr != nil {
		return false, m.casErr
	}
	u, ok := m.byID[id]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if m.beforeCAS != nil {
		m.beforeCAS(u)
	}
	if u.Points != expected.Points || !slices.Equal(u.Badges, expected.Badges) {
		return false, nil
	}
	u.Points = next.Points
	u.Badges = slices.Clone(next.Badges)
	return true, nil
}

func (m *memUsers) ListUsersByPointsDescending(_ context.Context, limit int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.order))
	for _, id := range m.order {
		clone := *m.byID[id]
		out = append(out, &clone)
	}
	slices.SortStableFunc(out, func(a, b *domain.User) int { return cmp.Compare(b.Points, a.Points) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) CountUsersRankedAbove(_ context.Context, id string, points int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := slices.Index(m.order, id)
	var n int64
	for i, other := range m.order {
		if other == id {
			continue
		}
		pts := m.byID[other].Points
		if pts > points || (pts == points && i < idx) {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) ForEachUserID(_ context.Context, fn func(string) error) error {
	for _, id := range slices.Clone(m.order) {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func (m *memUsers) BackfillScoreFields(context.Context) (int64, error) { return 0, nil }

// ---------------------------------------------------------------------------
// In-memory issues, votes and analytics
// ---------------------------------------------------------------------------

type memVote struct {
	issueID, userID string
	at              time.Time
}

type memDB struct {
	mu        sync.Mutex
	seq       int
	issues    []*domain.Issue
	votes     []memVote
	createErr error
	countErr  error
	voteErr   error

	// deleteVotesErr fails DeleteAllVotesForIssue without touching any vote.
	deleteVotesErr error
}

func newMemDB() *memDB { return &memDB{} }

func (d *memDB) seedIssue(createdBy string, status domain.IssueStatus, at time.Time) *domain.Issue {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	issue := &domain.Issue{
		ID:        fmt.Sprintf("issue-%d", d.seq),
		Title:     fmt.Sprintf("issue %d", d.seq),
		Category:  domain.CategoryRoad,
		Status:    status,
		CreatedBy: createdBy,
		CreatedAt: at,
		UpdatedAt: at,
	}
	d.issues = append(d.issues, issue)
	return issue
}

func (d *memDB) seedVote(issueID, userID string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.votes = append(d.votes, memVote{issueID: issueID, userID: userID, at: at})
}

func (d *memDB) issueByID(id string) *domain.Issue {
	for _, i := range d.issues {
		if i.ID == id {
			return i
		}
	}
	return nil
}

// IssueRepository

func (d *memDB) Create(_ context.Context, issue *domain.Issue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return d.createErr
	}
	d.seq++
	issue.ID = fmt.Sprintf("issue-%d", d.seq)
	clone := *issue
	d.issues = append(d.issues, &clone)
	return nil
}

func (d *memDB) FindByID(_ context.Context, id string) (*domain.Issue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.issueByID(id)
	if i == nil {
		return nil, domain.ErrIssueNotFound
	}
	clone := *i
	return &clone, nil
}

func (d *memDB) UpdatePending(_ context.Context, id string, c ports.IssueChanges) (*domain.Issue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.issueByID(id)
	if i == nil {
		return nil, domain.ErrIssueNotFound
	}
	if i.Status != domain.IssueStatusPending {
		return nil, domain.ErrIssueLocked
	}
	if c.Title != nil {
		i.Title = *c.Title
	}
	if c.Description != nil {
		i.Description = *c.Description
	}
	if c.Category != nil {
		i.Category = *c.Category
	}
	if c.Location != nil {
		i.Location = *c.Location
	}
	if c.ImageURL != nil {
		i.ImageURL = *c.ImageURL
	}
	if c.Coordinates != nil {
		i.Coordinates = c.Coordinates
	}
	i.UpdatedAt = c.UpdatedAt
	clone := *i
	return &clone, nil
}

func (d *memDB) DeletePending(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for idx, i := range d.issues {
		if i.ID == id {
			if i.Status != domain.IssueStatusPending {
				return domain.ErrIssueLocked
			}
			d.issues = slices.Delete(d.issues, idx, idx+1)
			return nil
		}
	}
	return domain.ErrIssueLocked
}

func (d *memDB) List(_ context.Context, f ports.ListIssuesFilter) ([]*domain.Issue, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []*domain.Issue
	for _, i := range d.issues {
		if f.Category != "" && string(i.Category) != f.Category {
			continue
		}
		if f.Status != "" && string(i.Status) != f.Status {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(i.Title), q) && !strings.Contains(strings.ToLower(i.Description), q) {
				continue
			}
		}
		clone := *i
		matched = append(matched, &clone)
	}
	slices.SortStableFunc(matched, func(a, b *domain.Issue) int {
		if f.Sort == ports.SortOldest {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Issue{}, total, nil
	}
	end := min(skip+f.Limit, len(matched))
	return matched[skip:end], total, nil
}

func (d *memDB) ListByCreator(_ context.Context, userID string, limit int) ([]*domain.Issue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*domain.Issue
	for _, i := range d.issues {
		if i.CreatedBy == userID {
			clone := *i
			out = append(out, &clone)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Issue) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *memDB) ListWithCoordinates(context.Context) ([]*domain.Issue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*domain.Issue
	for _, i := range d.issues {
		if i.Coordinates != nil {
			clone := *i
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (d *memDB) CountByCreatorAndStatus(_ context.Context, userID string, status domain.IssueStatus) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, i := range d.issues {
		if i.CreatedBy == userID && i.Status == status {
			n++
		}
	}
	return n, nil
}

// ActivityLedger

func (d *memDB) CountIssuesCreatedBy(_ context.Context, userID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.countErr != nil {
		return 0, d.countErr
	}
	var n int64
	for _, i := range d.issues {
		if i.CreatedBy == userID {
			n++
		}
	}
	return n, nil
}

func (d *memDB) CountVotesCastBy(_ context.Context, userID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.countErr != nil {
		return 0, d.countErr
	}
	var n int64
	for _, v := range d.votes {
		if v.userID == userID {
			n++
		}
	}
	return n, nil
}

func (d *memDB) VoteExists(_ context.Context, issueID, userID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.votes {
		if v.issueID == issueID && v.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *memDB) InsertVote(_ context.Context, vote *domain.Vote) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.voteErr != nil {
		return d.voteErr
	}
	for _, v := range d.votes {
		if v.issueID == vote.IssueID && v.userID == vote.UserID {
			return domain.ErrAlreadyVoted
		}
	}
	d.votes = append(d.votes, memVote{issueID: vote.IssueID, userID: vote.UserID, at: vote.CreatedAt})
	return nil
}

func (d *memDB) DeleteVote(_ context.Context, issueID, userID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := len(d.votes)
	d.votes = slices.DeleteFunc(d.votes, func(v memVote) bool { return v.issueID == issueID && v.userID == userID })
	return int64(before - len(d.votes)), nil
}

func (d *memDB) DeleteAllVotesForIssue(_ context.Context, issueID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleteVotesErr != nil {
		return nil, d.deleteVotesErr
	}
	var voters []string
	d.votes = slices.DeleteFunc(d.votes, func(v memVote) bool {
		if v.issueID == issueID {
			voters = append(voters, v.userID)
			return true
		}
		return false
	})
	return voters, nil
}

func (d *memDB) CountVotesForIssue(_ context.Context, issueID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, v := range d.votes {
		if v.issueID == issueID {
			n++
		}
	}
	return n, nil
}

func (d *memDB) CountVotesForIssues(_ context.Context, ids []string) (map[string]int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]int64{}
	for _, v := range d.votes {
		if slices.Contains(ids, v.issueID) {
			out[v.issueID]++
		}
	}
	return out, nil
}

func (d *memDB) VotedIssues(_ context.Context, userID string, ids []string) (map[string]bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]bool{}
	for _, v := range d.votes {
		if v.userID == userID && slices.Contains(ids, v.issueID) {
			out[v.issueID] = true
		}
	}
	return out, nil
}

func (d *memDB) RecentVotesBy(_ context.Context, userID string, limit int) ([]ports.VoteActivity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []ports.VoteActivity
	for _, v := range d.votes {
		if v.userID != userID {
			continue
		}
		a := ports.VoteActivity{IssueID: v.issueID, CreatedAt: v.at}
		if i := d.issueByID(v.issueID); i != nil {
			a.IssueTitle = i.Title
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, func(a, b ports.VoteActivity) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AnalyticsRepository

func (d *memDB) IssuesByCategory(context.Context) ([]domain.CategoryCount, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := map[domain.IssueCategory]int64{}
	for _, i := range d.issues {
		counts[i.Category]++
	}
	var out []domain.CategoryCount
	for _, c := range domain.Categories {
		if counts[c] > 0 {
			out = append(out, domain.CategoryCount{Category: c, Count: counts[c]})
		}
	}
	return out, nil
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func (d *memDB) CountIssues(_ context.Context, f ports.IssueCountFilter) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, i := range d.issues {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, i.Status) {
			continue
		}
		if !within(i.CreatedAt, f.CreatedFrom, f.CreatedTo) || !within(i.UpdatedAt, f.UpdatedFrom, f.UpdatedTo) {
			continue
		}
		n++
	}
	return n, nil
}

func (d *memDB) CountVotes(_ context.Context, from, to time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, v := range d.votes {
		if within(v.at, from, to) {
			n++
		}
	}
	return n, nil
}

func (d *memDB) TopVotedIssues(_ context.Context, recent, top int) ([]domain.IssueVoteCount, error) {
	d.mu.Lock()
	issues := slices.Clone(d.issues)
	d.mu.Unlock()

	slices.SortStableFunc(issues, func(a, b *domain.Issue) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(issues) > recent {
		issues = issues[:recent]
	}
	out := make([]domain.IssueVoteCount, 0, len(issues))
	for _, i := range issues {
		n, _ := d.CountVotesForIssue(context.Background(), i.ID)
		out = append(out, domain.IssueVoteCount{IssueID: i.ID, Title: i.Title, Votes: n})
	}
	slices.SortStableFunc(out, func(a, b domain.IssueVoteCount) int { return cmp.Compare(b.Votes, a.Votes) })
	if len(out) > top {
		out = out[:top]
	}
	return out, nil
}

func (d *memDB) ResolutionTimes(context.Context) ([]ports.ResolutionTime, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	hours := map[domain.IssueCategory][]float64{}
	for _, i := range d.issues {
		if i.Status == domain.IssueStatusResolved {
			hours[i.Category] = append(hours[i.Category], i.UpdatedAt.Sub(i.CreatedAt).Hours())
		}
	}
	var out []ports.ResolutionTime
	for _, c := range domain.Categories {
		hs := hours[c]
		if len(hs) == 0 {
			continue
		}
		var sum float64
		for _, h := range hs {
			sum += h
		}
		out = append(out, ports.ResolutionTime{Category: c, AvgHours: sum / float64(len(hs)), Resolved: int64(len(hs))})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// In-memory counter store with a controllable clock
// ---------------------------------------------------------------------------

type memCounter struct {
	n       int64
	expires time.Time
}

type memCounters struct {
	mu   sync.Mutex
	now  time.Time
	keys map[string]*memCounter
	err  error
}

func newMemCounters() *memCounters {
	return &memCounters{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), keys: map[string]*memCounter{}}
}

func (c *memCounters) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *memCounters) live(key string) *memCounter {
	e, ok := c.keys[key]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && !c.now.Before(e.expires) {
		delete(c.keys, key)
		return nil
	}
	return e
}

func (c *memCounters) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	e := c.live(key)
	if e == nil {
		e = &memCounter{}
		c.keys[key] = e
	}
	e.n++
	if e.n == 1 || e.expires.IsZero() {
		e.expires = c.now.Add(window)
	}
	return e.n, nil
}

func (c *memCounters) DecrementIfPositive(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	e := c.live(key)
	if e == nil {
		return 0, nil
	}
	if e.n > 0 {
		e.n--
	}
	return e.n, nil
}

func (c *memCounters) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if e := c.live(key); e != nil {
		return e.n, nil
	}
	return 0, nil
}

func (c *memCounters) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if e := c.live(key); e != nil {
		return e.expires.Sub(c.now), nil
	}
	return 0, nil
}
