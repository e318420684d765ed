package domain

import (
	"fmt"
	"slices"
)

const (
	PointsPerIssue = 10
	PointsPerVote  = 5
)

// Badge names as stored on the user document and shown to clients.
const (
	BadgeFirstIssue      = "First Issue"
	BadgeIssueHunter     = "Issue Hunter"
	BadgeCommunityHelper = "Community Helper"
	BadgeVotingMaster    = "Voting Master"
	BadgeLocalHero       = "Local Hero"
)

// Activity is the raw contribution count of a single user.
type Activity struct {
	IssuesCreated int
	VotesCast     int
}

// Score is the derived pair persisted on the user document.
type Score struct {
	Points int
	Badges []string
}

// ScoreSnapshot is what a reconciliation hands back to callers.
type ScoreSnapshot struct {
	Points        int      `json:"points"`
	Badges        []string `json:"badges"`
	IssuesCreated int      `json:"issues_created"`
	VotesCast     int      `json:"votes_cast"`
}

type badgeRule struct {
	name string
	met  func(a Activity, points int) bool
}

// badgeRules is kept in display order.
var badgeRules = []badgeRule{
	{BadgeFirstIssue, func(a Activity, _ int) bool { return a.IssuesCreated >= 1 }},
	{BadgeIssueHunter, func(a Activity, _ int) bool { return a.IssuesCreated >= 5 }},
	{BadgeCommunityHelper, func(a Activity, _ int) bool { return a.VotesCast >= 10 }},
	{BadgeVotingMaster, func(a Activity, _ int) bool { return a.VotesCast >= 25 }},
	{BadgeLocalHero, func(_ Activity, points int) bool { return points >= 100 }},
}

// ComputeScore derives points and badges from activity counts. Every badge
// rule is evaluated independently, so crossing a higher threshold never
// removes a lower badge.
func ComputeScore(a Activity) (Score, error) {
	if a.IssuesCreated < 0 || a.VotesCast < 0 {
		return Score{}, fmt.Errorf("%w: issues=%d votes=%d", ErrInvalidActivityCount, a.IssuesCreated, a.VotesCast)
	}

	points := PointsPerIssue*a.IssuesCreated + PointsPerVote*a.VotesCast
	badges := make([]string, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.met(a, points) {
			badges = append(badges, rule.name)
		}
	}
	return Score{Points: points, Badges: badges}, nil
}

// Matches reports whether a stored score equals s. Badge order is ignored but
// multiplicity is not: a stored list with a duplicated badge is drift.
func (s Score) Matches(stored Score) bool {
	if s.Points != stored.Points || len(s.Badges) != len(stored.Badges) {
		return false
	}
	a := slices.Clone(s.Badges)
	b := slices.Clone(stored.Badges)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// BadgeNames returns every known badge in display order.
func BadgeNames() []string {
	names := make([]string, len(badgeRules))
	for i, rule := range badgeRules {
		names[i] = rule.name
	}
	return names
}
