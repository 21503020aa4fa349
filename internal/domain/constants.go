package domain

// Load phase and status labels shared by the renderers.
const (
	// NoIssuesMessage is shown for a loaded repository without issues,
	// including when the fetch failed.
	NoIssuesMessage = "This repo has no issues."
	// NoRepoSelectedMessage is shown before any repository is picked.
	NoRepoSelectedMessage = "Please select a repo from the lefthand column"
	// MissingKeyMessage is the validation error for an empty API key.
	MissingKeyMessage = "Please enter an API Key"
)
