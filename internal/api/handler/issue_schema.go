package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type createIssueRequest struct {
	Title       string   `json:"title"       validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    string   `json:"category"    validate:"required,oneof=Road Water Sanitation Electricity Other"`
	Location    string   `json:"location"    validate:"required,max=200"`
	ImageURL    string   `json:"image_url"   validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude"    validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude"   validate:"omitempty,gte=-180,lte=180"`
}

// updateIssueRequest is a partial edit; absent fields are left untouched.
type updateIssueRequest struct {
	Title       *string  `json:"title"       validate:"omitempty,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    *string  `json:"category"    validate:"omitempty,oneof=Road Water Sanitation Electricity Other"`
	Location    *string  `json:"location"    validate:"omitempty,max=200"`
	ImageURL    *string  `json:"image_url"   validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude"    validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude"   validate:"omitempty,gte=-180,lte=180"`
}

type listIssuesQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=all Road Water Sanitation Electricity Other"`
	Status   string `query:"status"   validate:"omitempty,oneof=all Pending 'In Progress' Resolved"`
	Search   string `query:"search"   validate:"max=200"`
	Sort     string `query:"sort"     validate:"omitempty,oneof=newest oldest"`
	Page     int    `query:"page"     validate:"gte=0"`
	Limit    int    `query:"limit"    validate:"gte=0"`
}

// --- Response types ---

type coordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type creatorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type issueResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Location    string               `json:"location"`
	ImageURL    string               `json:"image_url,omitempty"`
	Status      string               `json:"status"`
	CreatedBy   creatorResponse      `json:"created_by"`
	Coordinates *coordinatesResponse `json:"coordinates,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type issueViewResponse struct {
	issueResponse
	Votes        int64 `json:"votes"`
	UserHasVoted bool  `json:"user_has_voted"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listIssuesResponse struct {
	Data       []issueViewResponse `json:"data"`
	Pagination paginationResponse  `json:"pagination"`
}

type mapIssueResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Category    string              `json:"category"`
	Status      string              `json:"status"`
	Location    string              `json:"location"`
	Coordinates coordinatesResponse `json:"coordinates"`
	CreatedAt   time.Time           `json:"created_at"`
}

type voteResponse struct {
	Votes        int64 `json:"votes"`
	UserHasVoted bool  `json:"user_has_voted"`
}
