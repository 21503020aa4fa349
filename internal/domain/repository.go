package domain

// Repository identifies a GitHub repository by owner login and name.
// The zero value means no repository is selected.
type Repository struct {
	Owner       string
	Name        string
	FullName    string
	Description string
	WebURL      string
}

// IsZero reports whether no repository is set.
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// SameAs reports whether r and other point at the same repository.
// Display fields are ignored.
func (r Repository) SameAs(other Repository) bool {
	return r.Owner == other.Owner && r.Name == other.Name
}

// Slug returns the "owner/name" form.
func (r Repository) Slug() string {
	return r.Owner + "/" + r.Name
}
