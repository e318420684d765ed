package domain

import "time"

const RoleAdmin = "admin"

// User is a registered citizen. Points and Badges are derived from activity
// and only ever written by score reconciliation.
type User struct {
	ID        string
	Name      string
	Email     string
	Points    int
	Badges    []string
	CreatedAt time.Time
}

// Vote records that a user upvoted an issue. A user votes on an issue at most once.
type Vote struct {
	IssueID   string
	UserID    string
	CreatedAt time.Time
}
