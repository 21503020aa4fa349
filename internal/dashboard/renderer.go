package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/format"
	"github.com/vilaca/repo-issues/internal/issues"
)

// Renderer handles rendering responses to HTTP clients.
type Renderer interface {
	RenderHealth(w io.Writer) error
	RenderPage(w io.Writer, page PageData) error
	RenderKeyForm(w io.Writer, fieldError string) error
	RenderIssuesJSON(w io.Writer, coll issues.Collection) error
}

// PageData is everything the issues page shows.
type PageData struct {
	Repositories []domain.Repository
	// RepositoriesErr is set when the repository list could not be fetched.
	RepositoriesErr bool
	Collection      issues.Collection
}

// HTMLRenderer implements Renderer for HTML responses.
type HTMLRenderer struct {
	maxTitleLength int
	now            func() time.Time
}

// NewHTMLRenderer creates a new HTML renderer truncating titles to
// maxTitleLength characters.
func NewHTMLRenderer(maxTitleLength int) *HTMLRenderer {
	return &HTMLRenderer{maxTitleLength: maxTitleLength, now: time.Now}
}

func (r *HTMLRenderer) RenderHealth(w io.Writer) error {
	_, err := w.Write([]byte(`{"status":"ok"}`))
	return err
}

// RenderPage renders the repository list and the issue listing.
func (r *HTMLRenderer) RenderPage(w io.Writer, page PageData) error {
	var sb strings.Builder
	coll := page.Collection

	refresh := 0
	if coll.Phase == issues.PhaseLoading {
		refresh = 2
	}

	sb.WriteString(htmlHead("Issues", "", refresh))
	sb.WriteString(pageCSS(issuesPageCSS))
	sb.WriteString(`<body>
	<div class="container">
		<h1>Github Repo Issues</h1>
`)
	sb.WriteString(buildNavigation())
	sb.WriteString(`
		<div class="layout">
`)
	r.writeRepositoryList(&sb, page)

	listingClass := "issue-listing"
	if coll.Phase == issues.PhaseNoRepoSelected {
		listingClass += " no-repo-selected"
	}
	sb.WriteString(fmt.Sprintf(`			<section class="%s">
				<h2>Issues%s</h2>
`, listingClass, repoNameHeading(coll.Repo)))

	switch coll.Status() {
	case issues.StatusUnloaded:
		sb.WriteString(fmt.Sprintf(`				<p class="no-repo">%s</p>
`, escapeHTML(domain.NoRepoSelectedMessage)))
	case issues.StatusLoading:
		sb.WriteString(loadingSpinner())
	case issues.StatusLoadedEmpty:
		sb.WriteString(fmt.Sprintf(`				<p class="no-issues">%s</p>
`, escapeHTML(domain.NoIssuesMessage)))
	default:
		r.writeMobileSort(&sb, coll.Sort)
		r.writeIssueTable(&sb, coll)
	}

	sb.WriteString(`			</section>
		</div>
	</div>`)
	sb.WriteString(htmlFooter())

	_, err := w.Write([]byte(sb.String()))
	return err
}

func repoNameHeading(repo domain.Repository) string {
	if repo.Name == "" {
		return ""
	}
	return fmt.Sprintf(` for <span class="highlight">%s</span>`, escapeHTML(repo.Name))
}

// writeRepositoryList writes the left-hand repository picker.
func (r *HTMLRenderer) writeRepositoryList(sb *strings.Builder, page PageData) {
	sb.WriteString(`			<aside class="repo-list">
				<h2>Repositories</h2>
`)
	switch {
	case page.RepositoriesErr:
		sb.WriteString(`				<p class="empty">Could not load repositories.</p>
`)
	case len(page.Repositories) == 0:
		sb.WriteString(`				<p class="empty">No repositories found.</p>
`)
	default:
		sb.WriteString("				<ul>\n")
		for _, repo := range page.Repositories {
			class := ""
			if repo.SameAs(page.Collection.Repo) {
				class = ` class="selected"`
			}
			query := url.Values{"owner": {repo.Owner}, "name": {repo.Name}}
			sb.WriteString(fmt.Sprintf(`					<li%s><a href="/select?%s">%s</a></li>
`, class, escapeHTML(query.Encode()), escapeHTML(repo.Name)))
		}
		sb.WriteString("				</ul>\n")
	}
	sb.WriteString("			</aside>\n")
}

// writeMobileSort writes the narrow-layout selectors. Each lives in its
// own form so that changing the column never carries a direction.
func (r *HTMLRenderer) writeMobileSort(sb *strings.Builder, state domain.SortState) {
	sb.WriteString(`				<div class="mobile-sort">
					<form action="/sort/column" method="get">
						<label for="sort-by">Sort by:</label>
						<select id="sort-by" name="column" onchange="this.form.submit()">
`)
	for _, column := range domain.SortChoices {
		sb.WriteString(option(string(column), column.ChoiceLabel(), state.Column == column))
	}
	sb.WriteString(`						</select>
						<noscript><button class="button" type="submit">Apply</button></noscript>
					</form>
					<form action="/sort/direction" method="get">
						<label for="sort-direction">Sort direction:</label>
						<select id="sort-direction" name="direction" onchange="this.form.submit()">
`)
	for _, direction := range []domain.Direction{domain.Ascending, domain.Descending} {
		sb.WriteString(option(string(direction), direction.Label(), state.Direction == direction))
	}
	sb.WriteString(`						</select>
						<noscript><button class="button" type="submit">Apply</button></noscript>
					</form>
				</div>
`)
}

func option(value, label string, selected bool) string {
	attr := ""
	if selected {
		attr = " selected"
	}
	return fmt.Sprintf(`							<option value="%s"%s>%s</option>
`, escapeHTML(value), attr, escapeHTML(label))
}

// writeIssueTable writes the wide-layout table with one toggle link per column.
func (r *HTMLRenderer) writeIssueTable(sb *strings.Builder, coll issues.Collection) {
	sb.WriteString(`				<table class="issues-table" id="issues-table">
					<thead>
						<tr>
`)
	for _, column := range domain.Columns {
		arrow := "sort-direction"
		if indicator := coll.Sort.Indicator(column); indicator != "" {
			arrow += " " + indicator
		}
		sb.WriteString(fmt.Sprintf(`							<th><a class="sort-button" data-column="%s" href="/sort/toggle?column=%s">%s <span class="%s"></span></a></th>
`, column, column, escapeHTML(column.Label()), arrow))
	}
	sb.WriteString(`						</tr>
					</thead>
					<tbody>
`)
	for _, issue := range coll.Records {
		r.writeIssueRow(sb, issue)
	}
	sb.WriteString(`					</tbody>
				</table>
`)
}

// writeIssueRow writes a single issue row to the string builder.
func (r *HTMLRenderer) writeIssueRow(sb *strings.Builder, issue domain.Issue) {
	assignee := "None"
	if issue.Assignee != nil && issue.Assignee.AvatarURL != "" {
		assignee = fmt.Sprintf(`<img src="%s" alt="%s" width="40" height="40">`,
			escapeHTML(issue.Assignee.AvatarURL), escapeHTML(issue.Assignee.Login))
	}

	title := escapeHTML(format.Truncate(issue.Title, r.maxTitleLength))
	if issue.WebURL != "" {
		title = externalLink(issue.WebURL, format.Truncate(issue.Title, r.maxTitleLength))
	}

	sb.WriteString(fmt.Sprintf(`						<tr>
							<td class="assignee-cell" data-label="Assignee">%s</td>
							<td class="title-cell" data-label="Title" title="%s">%s</td>
							<td class="created-cell" data-label="Created Time">%s</td>
							<td class="updated-cell" data-label="Last Updated">%s</td>
						</tr>
`, assignee, escapeHTML(issue.Title), title,
		format.CreatedDate(issue.CreatedAt),
		format.RelativeTo(issue.UpdatedAt, r.now())))
}

// RenderKeyForm renders the API key form with an optional field error.
func (r *HTMLRenderer) RenderKeyForm(w io.Writer, fieldError string) error {
	var sb strings.Builder

	sb.WriteString(htmlHead("API Key", "Submit your Github API key", 0))
	sb.WriteString(pageCSS(`
		.key-form { max-width: 375px; margin: 40px auto; text-align: center; }
		.key-form input { width: 100%; padding: 10px; margin: 15px 0 5px; border: 1px solid var(--border-color); border-radius: 4px; background: var(--bg-secondary); color: var(--text-primary); }
		.field-error { color: var(--error-text); font-size: 14px; min-height: 1.4em; margin-bottom: 10px; }
	`))
	sb.WriteString(`<body>
	<div class="container">
		<div class="key-form">
			<h1>Github Repo Issues</h1>
			<p>Please submit your Github API Key to see issues for your repos</p>
			<form action="/key" method="post">
				<input type="password" name="api_key" placeholder="Github API Key" autocomplete="off">
`)
	sb.WriteString(fmt.Sprintf(`				<div class="field-error">%s</div>
`, escapeHTML(fieldError)))
	sb.WriteString(`				<button class="button" type="submit">Submit</button>
			</form>
		</div>
	</div>`)
	sb.WriteString(htmlFooter())

	_, err := w.Write([]byte(sb.String()))
	return err
}

// issueJSON is the wire form of one issue, using GitHub's field names.
type issueJSON struct {
	Number    int           `json:"number,omitempty"`
	Title     string        `json:"title"`
	URL       string        `json:"html_url,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Assignee  *assigneeJSON `json:"assignee"`
}

type assigneeJSON struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RenderIssuesJSON renders the collection state as JSON.
func (r *HTMLRenderer) RenderIssuesJSON(w io.Writer, coll issues.Collection) error {
	records := make([]issueJSON, 0, len(coll.Records))
	for _, issue := range coll.Records {
		item := issueJSON{
			Number:    issue.Number,
			Title:     issue.Title,
			URL:       issue.WebURL,
			CreatedAt: issue.CreatedAt,
			UpdatedAt: issue.UpdatedAt,
		}
		if issue.Assignee != nil {
			item.Assignee = &assigneeJSON{Login: issue.Assignee.Login, AvatarURL: issue.Assignee.AvatarURL}
		}
		records = append(records, item)
	}

	var repo interface{}
	if !coll.Repo.IsZero() {
		repo = map[string]string{"owner": coll.Repo.Owner, "name": coll.Repo.Name}
	}

	return json.NewEncoder(w).Encode(map[string]interface{}{
		"phase":      coll.Phase.String(),
		"status":     coll.Status(),
		"repository": repo,
		"sort": map[string]string{
			"column":    string(coll.Sort.Column),
			"direction": string(coll.Sort.Direction),
		},
		"issues": records,
		"count":  len(records),
	})
}

const issuesPageCSS = `
		.layout { display: flex; gap: 30px; align-items: flex-start; }
		.repo-list { flex: 0 0 250px; background: var(--bg-secondary); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); }
		.repo-list ul { list-style: none; }
		.repo-list li a { display: block; padding: 6px 0; color: var(--link-color); text-decoration: none; }
		.repo-list li.selected a { font-weight: 600; }
		.issue-listing { flex: 1; background: var(--bg-secondary); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); }
		.issues-table { width: 100%; border-collapse: collapse; table-layout: auto; }
		.issues-table th { background: var(--bg-alt); }
		.issues-table td { padding: 1.5rem 15px; text-align: center; vertical-align: middle; max-width: 350px; }
		.issues-table tbody tr:nth-child(even) { background: var(--bg-alt); }
		.sort-button { display: block; padding: 0.75rem 15px; color: var(--text-primary); text-decoration: none; font-weight: 600; }
		.sort-direction.asc::after { content: "▲"; }
		.sort-direction.desc::after { content: "▼"; }
		.assignee-cell img { border-radius: 50%; }
		.mobile-sort { display: none; }
		@media (max-width: 768px) {
			body { padding: 10px; }
			.layout { flex-direction: column; }
			.repo-list { flex: none; width: 100%; }
			.issue-listing.no-repo-selected { display: none; }
			.mobile-sort { display: block; margin-bottom: 15px; }
			.mobile-sort select { width: 100%; padding: 6px; margin-bottom: 10px; }
			.issues-table, .issues-table thead, .issues-table tbody, .issues-table tr { display: block; }
			.issues-table thead tr { position: absolute; top: -99999px; }
			.issues-table td { display: flex; align-items: center; justify-content: space-between; min-height: 40px; max-width: 100%; padding: 10px 15px; }
			.issues-table td::before { content: attr(data-label); font-weight: bold; color: var(--link-color); margin-right: 15px; }
		}
`
