package termui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/issues"
)

const (
	repoPaneWidth = 28
	fetchTimeout  = 30 * time.Second
)

// reposLoadedMsg carries the repository list into the model.
type reposLoadedMsg struct {
	repos []domain.Repository
	err   error
}

// issuesLoadedMsg carries a completed fetch and the ticket it answers.
type issuesLoadedMsg struct {
	ticket  issues.Ticket
	records []domain.Issue
	err     error
}

// Model is the interactive issue browser. The left pane lists the
// user's repositories; the right pane shows the selected one's issues.
type Model struct {
	client api.Client
	apiKey string
	table  *Table

	repos    []domain.Repository
	reposErr error
	cursor   int

	coll    issues.Collection
	pending *issues.Ticket

	width  int
	height int
}

// NewModel creates a browser. A non-zero initial repository is fetched
// as soon as the program starts.
func NewModel(client api.Client, apiKey string, table *Table, initial domain.Repository) Model {
	model := Model{
		client: client,
		apiKey: apiKey,
		table:  table,
		coll:   issues.NewCollection(),
	}
	if next, ticket, ok := model.coll.SelectRepository(initial); ok {
		model.coll = next
		model.pending = &ticket
	}
	return model
}

// Collection returns the issue table state.
func (model Model) Collection() issues.Collection {
	return model.coll
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{model.loadRepositories()}
	if model.pending != nil {
		commands = append(commands, model.fetch(*model.pending))
	}
	return tea.Batch(commands...)
}

func (model Model) loadRepositories() tea.Cmd {
	client, apiKey := model.client, model.apiKey
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		repos, err := client.ListRepositories(ctx, apiKey)
		return reposLoadedMsg{repos: repos, err: err}
	}
}

func (model Model) fetch(ticket issues.Ticket) tea.Cmd {
	client, apiKey := model.client, model.apiKey
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		records, err := client.ListIssues(ctx, ticket.Repo.Owner, ticket.Repo.Name, apiKey)
		return issuesLoadedMsg{ticket: ticket, records: records, err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height

	case reposLoadedMsg:
		model.repos = message.repos
		model.reposErr = message.err
		if model.cursor >= len(model.repos) {
			model.cursor = 0
		}
		for i, repo := range model.repos {
			if repo.SameAs(model.coll.Repo) {
				model.cursor = i
			}
		}

	case issuesLoadedMsg:
		if next, applied := model.coll.OnFetchComplete(message.ticket, message.records, message.err); applied {
			model.coll = next
		}
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := message.String(); key {
	case "q", "ctrl+c":
		return model, tea.Quit

	case "1", "2", "3", "4":
		column := domain.Columns[int(key[0]-'1')]
		model.coll = model.coll.ToggleColumn(column)

	case "s":
		model.coll = model.coll.SelectColumn(model.coll.Sort.Column.NextChoice())

	case "a":
		model.coll = model.coll.SelectDirection(domain.Ascending)

	case "d":
		model.coll = model.coll.SelectDirection(domain.Descending)

	case "up", "k":
		if model.cursor > 0 {
			model.cursor--
		}

	case "down", "j":
		if model.cursor < len(model.repos)-1 {
			model.cursor++
		}

	case "enter":
		if len(model.repos) == 0 {
			return model, nil
		}
		next, ticket, ok := model.coll.SelectRepository(model.repos[model.cursor])
		if !ok {
			return model, nil
		}
		model.coll = next
		return model, model.fetch(ticket)

	case "r":
		next, ticket, ok := model.coll.Reload()
		if !ok {
			return model, nil
		}
		if invalidator, isInvalidator := model.client.(api.Invalidator); isInvalidator {
			invalidator.InvalidateIssues(ticket.Repo.Owner, ticket.Repo.Name, model.apiKey)
		}
		model.coll = next
		return model, model.fetch(ticket)
	}
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	layout := LayoutFor(model.width)
	repos := model.renderRepositories()

	var body string
	if layout == LayoutNarrow {
		body = lipgloss.JoinVertical(lipgloss.Left, repos, "", model.renderIssues(layout, model.width))
	} else {
		pane := model.table.renderer.NewStyle().Width(repoPaneWidth).Render(repos)
		body = lipgloss.JoinHorizontal(lipgloss.Top, pane, model.renderIssues(layout, model.width-repoPaneWidth))
	}

	return body + "\n\n" + model.table.styles.muted.Render(helpText(layout))
}

func (model Model) renderIssues(layout Layout, width int) string {
	heading := "Issues"
	if !model.coll.Repo.IsZero() {
		heading += " for " + model.table.styles.active.Render(model.coll.Repo.Name)
	}
	return model.table.styles.header.Render(heading) + "\n\n" + model.table.Render(model.coll, layout, width)
}

func (model Model) renderRepositories() string {
	var sb strings.Builder
	sb.WriteString(model.table.styles.header.Render("Repositories"))
	sb.WriteString("\n\n")

	switch {
	case model.reposErr != nil:
		sb.WriteString(model.table.styles.muted.Render("Could not load repositories."))
	case len(model.repos) == 0:
		sb.WriteString(model.table.styles.muted.Render("No repositories found."))
	default:
		for i, repo := range model.repos {
			marker := "  "
			if i == model.cursor {
				marker = "> "
			}
			line := marker + repo.Name
			if repo.SameAs(model.coll.Repo) {
				line = model.table.styles.active.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func helpText(layout Layout) string {
	if layout == LayoutNarrow {
		return "↑/↓ repo • enter select • s sort by • a/d direction • r reload • q quit"
	}
	return fmt.Sprintf("↑/↓ repo • enter select • 1-%d sort column • r reload • q quit", len(domain.Columns))
}
