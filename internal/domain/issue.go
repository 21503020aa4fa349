package domain

import "time"

// Issue represents a GitHub issue as fetched for a repository.
// Issues are treated as immutable once fetched; sorting only reorders them.
type Issue struct {
	Number    int
	Title     string
	State     string // "open", "closed"
	Assignee  *Assignee
	CreatedAt time.Time
	UpdatedAt time.Time
	WebURL    string
}

// Assignee is the user an issue is assigned to.
type Assignee struct {
	Login     string
	AvatarURL string
}

// AssigneeLogin returns the assignee login, or "" for an unassigned issue.
func (i Issue) AssigneeLogin() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Login
}
