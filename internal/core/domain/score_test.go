package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore_Table(t *testing.T) {
	cases := []struct {
		name       string
		activity   Activity
		wantPoints int
		wantBadges []string
	}{
		{"no activity", Activity{}, 0, []string{}},
		{"first issue", Activity{IssuesCreated: 1}, 10, []string{BadgeFirstIssue}},
		{"one issue ten votes", Activity{IssuesCreated: 1, VotesCast: 10}, 60,
			[]string{BadgeFirstIssue, BadgeCommunityHelper}},
		{"votes only reach local hero", Activity{VotesCast: 20}, 100,
			[]string{BadgeCommunityHelper, BadgeLocalHero}},
		{"every badge", Activity{IssuesCreated: 5, VotesCast: 25}, 175,
			[]string{BadgeFirstIssue, BadgeIssueHunter, BadgeCommunityHelper, BadgeVotingMaster, BadgeLocalHero}},
		{"just below local hero", Activity{IssuesCreated: 4, VotesCast: 11}, 95,
			[]string{BadgeFirstIssue, BadgeCommunityHelper}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeScore(tc.activity)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPoints, got.Points)
			assert.Equal(t, tc.wantBadges, got.Badges)
		})
	}
}

func TestComputeScore_RejectsNegativeCounts(t *testing.T) {
	_, err := ComputeScore(Activity{IssuesCreated: -1})
	assert.ErrorIs(t, err, ErrInvalidActivityCount)

	_, err = ComputeScore(Activity{VotesCast: -3})
	assert.ErrorIs(t, err, ErrInvalidActivityCount)
}

func TestComputeScore_Monotonic(t *testing.T) {
	prev, err := ComputeScore(Activity{})
	require.NoError(t, err)

	for i := 1; i <= 30; i++ {
		cur, err := ComputeScore(Activity{IssuesCreated: i / 3, VotesCast: i})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cur.Points, prev.Points)
		assert.Subset(t, cur.Badges, prev.Badges, "badges lost at step %d", i)
		prev = cur
	}
}

func TestComputeScore_BadgesFollowDisplayOrder(t *testing.T) {
	got, err := ComputeScore(Activity{IssuesCreated: 10, VotesCast: 30})
	require.NoError(t, err)
	assert.Equal(t, BadgeNames(), got.Badges)
}

func TestScoreMatches(t *testing.T) {
	computed := Score{Points: 60, Badges: []string{BadgeFirstIssue, BadgeCommunityHelper}}

	assert.True(t, computed.Matches(Score{Points: 60, Badges: []string{BadgeCommunityHelper, BadgeFirstIssue}}),
		"order must not matter")
	assert.False(t, computed.Matches(Score{Points: 55, Badges: computed.Badges}))
	assert.False(t, computed.Matches(Score{Points: 60, Badges: []string{BadgeFirstIssue}}))
	assert.False(t, computed.Matches(Score{Points: 60, Badges: []string{BadgeFirstIssue, BadgeFirstIssue}}),
		"duplicates are drift")
	assert.True(t, Score{Badges: []string{}}.Matches(Score{}), "nil and empty badge lists are equal")
}
