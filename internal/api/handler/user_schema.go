package handler

import "time"

type scoreResponse struct {
	Points        int      `json:"points"`
	Badges        []string `json:"badges"`
	IssuesCreated int      `json:"issues_created"`
	VotesCast     int      `json:"votes_cast"`
}

type activityResponse struct {
	Type    string    `json:"type"`
	IssueID string    `json:"issue_id"`
	Title   string    `json:"title"`
	Points  int       `json:"points"`
	At      time.Time `json:"at"`
}

type statsResponse struct {
	scoreResponse
	Rank           int64              `json:"rank"`
	IssuesResolved int64              `json:"issues_resolved"`
	RecentActivity []activityResponse `json:"recent_activity"`
}

type quotaResponse struct {
	Used           int   `json:"used"`
	Limit          int   `json:"limit"`
	Remaining      int   `json:"remaining"`
	ResetInSeconds int64 `json:"reset_in_seconds"`
}

type leaderboardEntryResponse struct {
	Rank          int      `json:"rank"`
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Points        int      `json:"points"`
	Badges        []string `json:"badges"`
	IssuesCreated int      `json:"issues_created"`
	VotesCast     int      `json:"votes_cast"`
}

type leaderboardResponse struct {
	Data []leaderboardEntryResponse `json:"data"`
}

type rescoreResponse struct {
	UserID string `json:"user_id"`
	scoreResponse
}

type rescoreAcceptedResponse struct {
	Message  string `json:"message"`
	Accepted int    `json:"accepted"`
	Dropped  int    `json:"dropped"`
}

// --- Analytics ---

type categoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type dailyCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type topVotedResponse struct {
	IssueID string `json:"issue_id"`
	Title   string `json:"title"`
	Votes   int64  `json:"votes"`
}

type trendResponse struct {
	Current  int64 `json:"current"`
	Previous int64 `json:"previous"`
	Growth   int64 `json:"growth"`
}

type totalsResponse struct {
	Issues int64 `json:"issues"`
	Votes  int64 `json:"votes"`
	Open   int64 `json:"open"`
}

type trendsResponse struct {
	Issues      trendResponse `json:"issues"`
	Votes       trendResponse `json:"votes"`
	Resolutions trendResponse `json:"resolutions"`
}

type categoryResolutionResponse struct {
	Category string  `json:"category"`
	AvgDays  float64 `json:"avg_days"`
	Resolved int64   `json:"resolved"`
}

type analyticsResponse struct {
	IssuesByCategory     []categoryCountResponse      `json:"issues_by_category"`
	Last7Days            []dailyCountResponse         `json:"last_7_days"`
	TopVoted             []topVotedResponse           `json:"top_voted"`
	Totals               totalsResponse               `json:"totals"`
	Trends               trendsResponse               `json:"trends"`
	ResolutionByCategory []categoryResolutionResponse `json:"resolution_by_category"`
}
