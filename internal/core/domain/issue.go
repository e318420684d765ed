package domain

import "time"

// IssueStatus represents the lifecycle state of a reported issue.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "Pending"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusResolved   IssueStatus = "Resolved"
)

// IssueCategory classifies what kind of civic problem was reported.
type IssueCategory string

const (
	CategoryRoad        IssueCategory = "Road"
	CategoryWater       IssueCategory = "Water"
	CategorySanitation  IssueCategory = "Sanitation"
	CategoryElectricity IssueCategory = "Electricity"
	CategoryOther       IssueCategory = "Other"
)

// Categories lists every category in display order.
var Categories = []IssueCategory{
	CategoryRoad,
	CategoryWater,
	CategorySanitation,
	CategoryElectricity,
	CategoryOther,
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// UserRef is the public part of a user embedded in issue views.
type UserRef struct {
	ID   string
	Name string
}

// Issue is a civic problem reported by a citizen.
type Issue struct {
	ID          string
	Title       string
	Description string
	Category    IssueCategory
	Location    string
	ImageURL    string
	Status      IssueStatus
	CreatedBy   string
	Creator     *UserRef
	Coordinates *Coordinates
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the issue still awaits resolution.
func (i *Issue) IsOpen() bool {
	return i.Status == IssueStatusPending || i.Status == IssueStatusInProgress
}

// CheckEditableBy reports whether userID may update or delete the issue:
// only the creator, and only while it is still pending.
func (i *Issue) CheckEditableBy(userID string) error {
	if i.CreatedBy != userID {
		return ErrForbidden
	}
	if i.Status != IssueStatusPending {
		return ErrIssueLocked
	}
	return nil
}
