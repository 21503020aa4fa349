package issues

import (
	"slices"

	"github.com/vilaca/repo-issues/internal/domain"
)

// ToggleColumn handles a click on a column header. Repeating the active
// column flips the direction; a different column starts descending.
func ToggleColumn(records []domain.Issue, current domain.SortState, column domain.Column) ([]domain.Issue, domain.SortState) {
	direction := domain.Descending
	if column == current.Column {
		direction = current.Direction.Flip()
	}
	return applySort(records, column, direction)
}

// SelectColumn handles the sort-by selector. The direction always resets
// to descending.
func SelectColumn(records []domain.Issue, _ domain.SortState, column domain.Column) ([]domain.Issue, domain.SortState) {
	return applySort(records, column, domain.Descending)
}

// SelectDirection handles the direction selector. The active column is
// kept and re-applied with the given direction.
func SelectDirection(records []domain.Issue, current domain.SortState, direction domain.Direction) ([]domain.Issue, domain.SortState) {
	column := current.Column
	if column == "" {
		column = domain.DefaultSortState.Column
	}
	return applySort(records, column, direction)
}

// applySort returns a reordered copy of records. The copy is stable-sorted
// in the column's canonical order and then reversed as a whole when the
// direction is ascending, so ties keep their canonical order and flip
// together.
func applySort(records []domain.Issue, column domain.Column, direction domain.Direction) ([]domain.Issue, domain.SortState) {
	sorted := slices.Clone(records)
	if sorted == nil {
		sorted = []domain.Issue{}
	}
	slices.SortStableFunc(sorted, ComparatorFor(column))
	if direction == domain.Ascending {
		slices.Reverse(sorted)
	}
	return sorted, domain.SortState{Column: column, Direction: direction}
}
