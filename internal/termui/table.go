// Package termui renders issue tables for terminals and runs the
// interactive browser.
package termui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/format"
	"github.com/vilaca/repo-issues/internal/issues"
)

// NarrowWidth is the terminal width below which the stacked layout is used.
const NarrowWidth = 80

// Layout selects how the issue table is drawn.
type Layout int

const (
	// LayoutWide draws one row per issue under clickable-style headers.
	LayoutWide Layout = iota
	// LayoutNarrow draws one labelled block per issue under the sort selectors.
	LayoutNarrow
)

// LayoutFor returns the layout for a terminal width. Unknown widths
// (zero or negative) get the wide layout.
func LayoutFor(width int) Layout {
	if width > 0 && width < NarrowWidth {
		return LayoutNarrow
	}
	return LayoutWide
}

const (
	assigneeWidth = 16
	createdWidth  = 16
	updatedWidth  = 16
	minTitleWidth = 16
	columnGap     = 2
)

type styles struct {
	header  lipgloss.Style
	active  lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	message lipgloss.Style
}

// Table draws a collection as text.
type Table struct {
	renderer       *lipgloss.Renderer
	styles         styles
	maxTitleLength int
	now            func() time.Time
}

// NewTable creates a table drawing with the colour profile of renderer.
func NewTable(renderer *lipgloss.Renderer, maxTitleLength int) *Table {
	return &Table{
		renderer: renderer,
		styles: styles{
			header:  renderer.NewStyle().Bold(true),
			active:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			label:   renderer.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			muted:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
			message: renderer.NewStyle().Italic(true),
		},
		maxTitleLength: maxTitleLength,
		now:            time.Now,
	}
}

// Render draws coll in the given layout, fitting rows to width.
func (t *Table) Render(coll issues.Collection, layout Layout, width int) string {
	switch coll.Status() {
	case issues.StatusUnloaded:
		return t.styles.message.Render(domain.NoRepoSelectedMessage)
	case issues.StatusLoading:
		return t.styles.muted.Render(fmt.Sprintf("Loading issues for %s...", coll.Repo.Slug()))
	case issues.StatusLoadedEmpty:
		return t.styles.message.Render(domain.NoIssuesMessage)
	}

	if layout == LayoutNarrow {
		return t.renderNarrow(coll)
	}
	return t.renderWide(coll, width)
}

func arrow(direction string) string {
	switch direction {
	case string(domain.Ascending):
		return " ▲"
	case string(domain.Descending):
		return " ▼"
	}
	return ""
}

func (t *Table) cell(style lipgloss.Style, text string, width int) string {
	return style.Width(width).Render(fit(text, width))
}

// fit cuts text to at most width cells, marking the cut with an ellipsis.
func fit(text string, width int) string {
	if lipgloss.Width(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// titleWidth returns the title column width. Without a known width the
// column grows to the longest title so truncated titles are never cut again.
func titleWidth(width int, titles []string) int {
	if width <= 0 {
		w := minTitleWidth
		for _, title := range titles {
			w = max(w, lipgloss.Width(title))
		}
		return w
	}
	w := width - assigneeWidth - createdWidth - updatedWidth - 3*columnGap
	if w < minTitleWidth {
		return minTitleWidth
	}
	return w
}

func (t *Table) renderWide(coll issues.Collection, width int) string {
	titles := make([]string, len(coll.Records))
	for i, issue := range coll.Records {
		titles[i] = format.Truncate(issue.Title, t.maxTitleLength)
	}

	widths := map[domain.Column]int{
		domain.ColumnAssignee:  assigneeWidth,
		domain.ColumnTitle:     titleWidth(width, titles),
		domain.ColumnCreatedAt: createdWidth,
		domain.ColumnUpdatedAt: updatedWidth,
	}
	gap := strings.Repeat(" ", columnGap)

	headers := make([]string, 0, len(domain.Columns))
	for _, column := range domain.Columns {
		style := t.styles.header
		indicator := coll.Sort.Indicator(column)
		if indicator != "" {
			style = t.styles.active
		}
		headers = append(headers, t.cell(style, column.Label()+arrow(indicator), widths[column]))
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(headers, gap))
	sb.WriteString("\n")

	now := t.now()
	for i, issue := range coll.Records {
		cells := []string{
			t.cell(t.styles.muted, assigneeText(issue), widths[domain.ColumnAssignee]),
			t.cell(t.renderer.NewStyle(), titles[i], widths[domain.ColumnTitle]),
			t.cell(t.renderer.NewStyle(), format.CreatedDate(issue.CreatedAt), widths[domain.ColumnCreatedAt]),
			t.cell(t.styles.muted, format.RelativeTo(issue.UpdatedAt, now), widths[domain.ColumnUpdatedAt]),
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, gap), " "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *Table) renderNarrow(coll issues.Collection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n%s %s\n",
		t.styles.label.Render("Sort by:"), coll.Sort.Column.ChoiceLabel(),
		t.styles.label.Render("Sort direction:"), coll.Sort.Direction.Label()))

	now := t.now()
	for _, issue := range coll.Records {
		sb.WriteString("\n")
		sb.WriteString(t.field("Assignee", assigneeText(issue)))
		sb.WriteString(t.field("Title", format.Truncate(issue.Title, t.maxTitleLength)))
		sb.WriteString(t.field("Created Time", format.CreatedDate(issue.CreatedAt)))
		sb.WriteString(t.field("Last Updated", format.RelativeTo(issue.UpdatedAt, now)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *Table) field(label, value string) string {
	return fmt.Sprintf("%s %s\n", t.styles.label.Render(label+":"), value)
}

func assigneeText(issue domain.Issue) string {
	if login := issue.AssigneeLogin(); login != "" {
		return login
	}
	return "None"
}
