package domain

import (
	"cmp"
	"slices"
)

// LeaderboardCandidate is a user eligible for ranking, carrying freshly
// reconciled points.
type LeaderboardCandidate struct {
	UserID        string
	Name          string
	Points        int
	Badges        []string
	IssuesCreated int
	VotesCast     int
}

// RankedEntry is a candidate with its 1-based position.
type RankedEntry struct {
	Rank int
	LeaderboardCandidate
}

// Rank orders candidates by points descending. Ties keep their input order and
// ranks are positional, so two users with equal points get consecutive ranks.
func Rank(candidates []LeaderboardCandidate) []RankedEntry {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b LeaderboardCandidate) int {
		return cmp.Compare(b.Points, a.Points)
	})

	out := make([]RankedEntry, len(sorted))
	for i, c := range sorted {
		out[i] = RankedEntry{Rank: i + 1, LeaderboardCandidate: c}
	}
	return out
}
