package issues

import (
	"strings"

	"github.com/vilaca/repo-issues/internal/domain"
)

// Comparator orders two issues in a column's canonical order. The
// controller sorts by it and reverses the result for ascending direction.
type Comparator func(a, b domain.Issue) int

// comparators holds one comparator per sortable column.
//
// Text columns compare case-insensitively in natural A-Z order, so their
// "descending" direction reads A-Z and "ascending" reads Z-A. Date columns
// compare newest first. An unassigned issue compares as an empty login,
// which sorts before every assigned issue.
var comparators = map[domain.Column]Comparator{
	domain.ColumnTitle:     compareTitle,
	domain.ColumnAssignee:  compareAssignee,
	domain.ColumnCreatedAt: compareCreatedAt,
	domain.ColumnUpdatedAt: compareUpdatedAt,
}

// ComparatorFor returns the comparator for column. Unknown columns fall
// back to creation time.
func ComparatorFor(column domain.Column) Comparator {
	if cmp, ok := comparators[column]; ok {
		return cmp
	}
	return compareCreatedAt
}

func compareTitle(a, b domain.Issue) int {
	return strings.Compare(strings.ToUpper(a.Title), strings.ToUpper(b.Title))
}

func compareAssignee(a, b domain.Issue) int {
	return strings.Compare(strings.ToUpper(a.AssigneeLogin()), strings.ToUpper(b.AssigneeLogin()))
}

func compareCreatedAt(a, b domain.Issue) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func compareUpdatedAt(a, b domain.Issue) int {
	return b.UpdatedAt.Compare(a.UpdatedAt)
}
