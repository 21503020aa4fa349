package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Column is a sortable issue table column.
type Column string

const (
	ColumnAssignee  Column = "assignee"
	ColumnTitle     Column = "title"
	ColumnCreatedAt Column = "created_at"
	ColumnUpdatedAt Column = "updated_at"
)

// Columns lists the sortable columns in table order.
var Columns = []Column{ColumnAssignee, ColumnTitle, ColumnCreatedAt, ColumnUpdatedAt}

// Label returns the column heading shown to users.
func (c Column) Label() string {
	switch c {
	case ColumnAssignee:
		return "Assignee"
	case ColumnTitle:
		return "Title"
	case ColumnCreatedAt:
		return "Time Created"
	case ColumnUpdatedAt:
		return "Last Updated"
	default:
		return string(c)
	}
}

// SortChoices lists the sort-by selector's columns in display order.
var SortChoices = []Column{ColumnCreatedAt, ColumnAssignee, ColumnTitle, ColumnUpdatedAt}

// ChoiceLabel returns the column's label in the sort-by selector.
func (c Column) ChoiceLabel() string {
	if c == ColumnCreatedAt {
		return "Created Time"
	}
	return c.Label()
}

// NextChoice returns the sort-by choice following c, wrapping around.
func (c Column) NextChoice() Column {
	for i, choice := range SortChoices {
		if choice == c {
			return SortChoices[(i+1)%len(SortChoices)]
		}
	}
	return SortChoices[0]
}

// Direction is the sort direction of the active column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Label returns the direction name shown to users.
func (d Direction) Label() string {
	if d == Ascending {
		return "Ascending"
	}
	return "Descending"
}

var (
	ErrUnknownColumn    = errors.New("unknown sort column")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// ParseColumn parses a column name. "avatar_url" is accepted as an alias
// for the assignee column.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assignee", "avatar_url":
		return ColumnAssignee, nil
	case "title":
		return ColumnTitle, nil
	case "created_at", "created":
		return ColumnCreatedAt, nil
	case "updated_at", "updated":
		return ColumnUpdatedAt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

// ParseDirection parses "asc"/"ascending" or "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// SortState is the active column and its direction.
type SortState struct {
	Column    Column
	Direction Direction
}

// DefaultSortState is newest-created first.
var DefaultSortState = SortState{Column: ColumnCreatedAt, Direction: Descending}

// Indicator returns the arrow state for a column header: the direction
// when column is active, "" otherwise.
func (s SortState) Indicator(column Column) string {
	if s.Column != column {
		return ""
	}
	return string(s.Direction)
}
