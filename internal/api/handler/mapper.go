package handler

import (
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createIssueRequest, userID string) ports.CreateIssueInput {
	return ports.CreateIssueInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.IssueCategory(req.Category),
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
}

func toUpdateInput(req updateIssueRequest, issueID, userID string) ports.UpdateIssueInput {
	in := ports.UpdateIssueInput{
		IssueID:     issueID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if req.Category != nil {
		cat := domain.IssueCategory(*req.Category)
		in.Category = &cat
	}
	return in
}

func toListInput(q listIssuesQuery, viewerID string) ports.ListIssuesInput {
	f := ports.ListIssuesFilter{
		Search: q.Search,
		Sort:   ports.IssueSort(q.Sort),
		Page:   q.Page,
		Limit:  q.Limit,
	}
	if q.Category != "all" {
		f.Category = q.Category
	}
	if q.Status != "all" {
		f.Status = q.Status
	}
	return ports.ListIssuesInput{ListIssuesFilter: f, ViewerID: viewerID}
}

// --- Service result → HTTP response ---

func toIssueResponse(i *domain.Issue) issueResponse {
	resp := issueResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    string(i.Category),
		Location:    i.Location,
		ImageURL:    i.ImageURL,
		Status:      string(i.Status),
		CreatedBy:   creatorResponse{ID: i.CreatedBy},
		CreatedAt:   i.CreatedAt.UTC(),
		UpdatedAt:   i.UpdatedAt.UTC(),
	}
	if i.Creator != nil {
		resp.CreatedBy.Name = i.Creator.Name
	}
	if i.Coordinates != nil {
		resp.Coordinates = &coordinatesResponse{Lat: i.Coordinates.Lat, Lng: i.Coordinates.Lng}
	}
	return resp
}

func toIssueViewResponse(v ports.IssueView) issueViewResponse {
	return issueViewResponse{
		issueResponse: toIssueResponse(v.Issue),
		Votes:         v.Votes,
		UserHasVoted:  v.UserHasVoted,
	}
}

func toIssueViewsResponse(views []ports.IssueView) []issueViewResponse {
	out := make([]issueViewResponse, len(views))
	for i, v := range views {
		out[i] = toIssueViewResponse(v)
	}
	return out
}

func toListResponse(p *ports.IssuePage) listIssuesResponse {
	return listIssuesResponse{
		Data: toIssueViewsResponse(p.Issues),
		Pagination: paginationResponse{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}
}

func toMapResponse(issues []*domain.Issue) []mapIssueResponse {
	out := make([]mapIssueResponse, 0, len(issues))
	for _, i := range issues {
		if i.Coordinates == nil {
			continue
		}
		out = append(out, mapIssueResponse{
			ID:          i.ID,
			Title:       i.Title,
			Category:    string(i.Category),
			Status:      string(i.Status),
			Location:    i.Location,
			Coordinates: coordinatesResponse{Lat: i.Coordinates.Lat, Lng: i.Coordinates.Lng},
			CreatedAt:   i.CreatedAt.UTC(),
		})
	}
	return out
}

func toVoteResponse(r *ports.VoteResult) voteResponse {
	return voteResponse{Votes: r.Votes, UserHasVoted: r.UserHasVoted}
}

func toScoreResponse(s domain.ScoreSnapshot) scoreResponse {
	return scoreResponse{
		Points:        s.Points,
		Badges:        badgesOrEmpty(s.Badges),
		IssuesCreated: s.IssuesCreated,
		VotesCast:     s.VotesCast,
	}
}

func toStatsResponse(s *ports.UserStats) statsResponse {
	activity := make([]activityResponse, len(s.RecentActivity))
	for i, a := range s.RecentActivity {
		activity[i] = activityResponse{
			Type:    string(a.Kind),
			IssueID: a.IssueID,
			Title:   a.Title,
			Points:  a.Points,
			At:      a.At.UTC(),
		}
	}
	return statsResponse{
		scoreResponse:  toScoreResponse(s.ScoreSnapshot),
		Rank:           s.Rank,
		IssuesResolved: s.IssuesResolved,
		RecentActivity: activity,
	}
}

func toQuotaResponse(q *ports.Quota) quotaResponse {
	return quotaResponse{
		Used:           q.Used,
		Limit:          q.Limit,
		Remaining:      q.Remaining,
		ResetInSeconds: int64(q.ResetIn.Seconds()),
	}
}

func toLeaderboardResponse(entries []domain.RankedEntry) leaderboardResponse {
	out := make([]leaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = leaderboardEntryResponse{
			Rank:          e.Rank,
			UserID:        e.UserID,
			Name:          e.Name,
			Points:        e.Points,
			Badges:        badgesOrEmpty(e.Badges),
			IssuesCreated: e.IssuesCreated,
			VotesCast:     e.VotesCast,
		}
	}
	return leaderboardResponse{Data: out}
}

func toAnalyticsResponse(s *ports.AnalyticsSummary) analyticsResponse {
	resp := analyticsResponse{
		IssuesByCategory:     make([]categoryCountResponse, len(s.IssuesByCategory)),
		Last7Days:            make([]dailyCountResponse, len(s.Last7Days)),
		TopVoted:             make([]topVotedResponse, len(s.TopVoted)),
		ResolutionByCategory: make([]categoryResolutionResponse, len(s.ResolutionByCategory)),
		Totals: totalsResponse{
			Issues: s.TotalIssues,
			Votes:  s.TotalVotes,
			Open:   s.OpenIssues,
		},
		Trends: trendsResponse{
			Issues:      toTrendResponse(s.IssueTrend),
			Votes:       toTrendResponse(s.VoteTrend),
			Resolutions: toTrendResponse(s.ResolutionTrend),
		},
	}
	for i, c := range s.IssuesByCategory {
		resp.IssuesByCategory[i] = categoryCountResponse{Category: string(c.Category), Count: c.Count}
	}
	for i, d := range s.Last7Days {
		resp.Last7Days[i] = dailyCountResponse{Date: d.Date, Count: d.Count}
	}
	for i, t := range s.TopVoted {
		resp.TopVoted[i] = topVotedResponse{IssueID: t.IssueID, Title: t.Title, Votes: t.Votes}
	}
	for i, r := range s.ResolutionByCategory {
		resp.ResolutionByCategory[i] = categoryResolutionResponse{
			Category: string(r.Category),
			AvgDays:  r.AvgDays,
			Resolved: r.Resolved,
		}
	}
	return resp
}

func toTrendResponse(t domain.Trend) trendResponse {
	return trendResponse{Current: t.Current, Previous: t.Previous, Growth: t.Growth}
}

func badgesOrEmpty(b []string) []string {
	if b == nil {
		return []string{}
	}
	return b
}
