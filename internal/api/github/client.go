package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/domain"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// Client implements api.Client for the GitHub REST API.
type Client struct {
	*api.BaseClient
}

// NewClient creates a new GitHub client.
// Uses dependency injection for HTTPClient.
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseClient: api.NewBaseClient(baseURL, config.Token, httpClient),
	}
}

// ListRepositories retrieves the repositories of the authenticated user.
func (c *Client) ListRepositories(ctx context.Context, apiKey string) ([]domain.Repository, error) {
	endpoint := fmt.Sprintf("%s/user/repos?per_page=%d&sort=updated", c.BaseURL, api.DefaultPageSize)

	var ghRepos []githubRepository
	if err := c.doRequest(ctx, endpoint, apiKey, &ghRepos); err != nil {
		return nil, fmt.Errorf("failed to get repositories: %w", err)
	}

	return convertRepositories(ghRepos), nil
}

// ListIssues retrieves the issues of a repository.
func (c *Client) ListIssues(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues", c.BaseURL, url.PathEscape(owner), url.PathEscape(repo))

	var ghIssues []githubIssue
	if err := c.doRequest(ctx, endpoint, apiKey, &ghIssues); err != nil {
		return nil, fmt.Errorf("failed to get issues for %s/%s: %w", owner, repo, err)
	}

	return convertIssues(ghIssues), nil
}

// doRequest performs a rate-limited GET against the GitHub API and decodes
// the JSON body into result.
func (c *Client) doRequest(ctx context.Context, endpoint, apiKey string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if token := c.TokenOr(apiKey); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	return c.DoRateLimited(ctx, func() error {
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &api.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}

// convertRepositories converts GitHub repositories to domain models.
func convertRepositories(ghRepos []githubRepository) []domain.Repository {
	repos := make([]domain.Repository, 0, len(ghRepos))
	for _, repo := range ghRepos {
		repos = append(repos, domain.Repository{
			Owner:       repo.Owner.Login,
			Name:        repo.Name,
			FullName:    repo.FullName,
			Description: repo.Description,
			WebURL:      repo.HTMLURL,
		})
	}
	return repos
}

// convertIssues converts GitHub issues to domain models.
func convertIssues(ghIssues []githubIssue) []domain.Issue {
	issues := make([]domain.Issue, 0, len(ghIssues))
	for _, issue := range ghIssues {
		var assignee *domain.Assignee
		if issue.Assignee != nil {
			assignee = &domain.Assignee{
				Login:     issue.Assignee.Login,
				AvatarURL: issue.Assignee.AvatarURL,
			}
		}

		issues = append(issues, domain.Issue{
			Number:    issue.Number,
			Title:     issue.Title,
			State:     issue.State,
			Assignee:  assignee,
			CreatedAt: issue.CreatedAt,
			UpdatedAt: issue.UpdatedAt,
			WebURL:    issue.HTMLURL,
		})
	}
	return issues
}

// GitHub API response types
type githubUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type githubRepository struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Description string     `json:"description"`
	HTMLURL     string     `json:"html_url"`
	Owner       githubUser `json:"owner"`
}

type githubIssue struct {
	Number    int         `json:"number"`
	Title     string      `json:"title"`
	State     string      `json:"state"`
	HTMLURL   string      `json:"html_url"`
	Assignee  *githubUser `json:"assignee"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
