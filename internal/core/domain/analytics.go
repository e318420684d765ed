package domain

import "math"

type CategoryCount struct {
	Category IssueCategory
	Count    int64
}

type DailyCount struct {
	Date  string // YYYY-MM-DD, UTC
	Count int64
}

type IssueVoteCount struct {
	IssueID string
	Title   string
	Votes   int64
}

type CategoryResolution struct {
	Category IssueCategory
	AvgDays  float64
	Resolved int64
}

// Trend compares a metric across two consecutive windows.
type Trend struct {
	Current  int64
	Previous int64
	Growth   int64
}

// NewTrend computes percentage growth, rounded to the nearest integer. A
// window that grows from zero counts as 100% and zero-to-zero as 0%.
func NewTrend(current, previous int64) Trend {
	t := Trend{Current: current, Previous: previous}
	switch {
	case previous > 0:
		t.Growth = int64(math.Round(float64(current-previous) / float64(previous) * 100))
	case current > 0:
		t.Growth = 100
	}
	return t
}
