// Package issues holds the issue table state: the fetched records, the
// load phase and the sort controller that reorders them.
package issues

import (
	"github.com/vilaca/repo-issues/internal/domain"
)

// Phase is the coarse load state of a Collection.
type Phase int

const (
	PhaseNoRepoSelected Phase = iota
	PhaseLoading
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	default:
		return "no-repo-selected"
	}
}

// Status is the store-level view of a Collection.
type Status string

const (
	StatusUnloaded       Status = "unloaded"
	StatusLoading        Status = "loading"
	StatusLoadedEmpty    Status = "loaded-empty"
	StatusLoadedNonEmpty Status = "loaded-nonempty"
)

// Ticket identifies one fetch started by SelectRepository. A completion
// carrying an older ticket is ignored.
type Ticket struct {
	Repo       domain.Repository
	Generation uint64
}

// Collection is the issue table state for one viewer. Values are treated
// as immutable: every transition returns a new Collection.
type Collection struct {
	Phase      Phase
	Repo       domain.Repository
	Records    []domain.Issue
	Sort       domain.SortState
	Generation uint64

	// FetchErr is the error of the last failed fetch. It is kept for
	// logging; viewers see an empty repository.
	FetchErr error
}

// NewCollection returns the initial state: no repository, default sort.
func NewCollection() Collection {
	return Collection{
		Phase: PhaseNoRepoSelected,
		Sort:  domain.DefaultSortState,
	}
}

// Status derives the store status from the phase and records.
func (c Collection) Status() Status {
	switch c.Phase {
	case PhaseLoading:
		return StatusLoading
	case PhaseLoaded:
		if len(c.Records) == 0 {
			return StatusLoadedEmpty
		}
		return StatusLoadedNonEmpty
	default:
		return StatusUnloaded
	}
}

// SelectRepository moves to the loading phase for repo and returns the
// ticket the fetch must complete with. ok is false when repo is unset or
// already selected, in which case no fetch should start.
func (c Collection) SelectRepository(repo domain.Repository) (next Collection, ticket Ticket, ok bool) {
	if repo.IsZero() || (c.Phase != PhaseNoRepoSelected && c.Repo.SameAs(repo)) {
		return c, Ticket{}, false
	}
	return c.reload(repo)
}

// Reload starts a new fetch for the selected repository.
func (c Collection) Reload() (next Collection, ticket Ticket, ok bool) {
	if c.Repo.IsZero() {
		return c, Ticket{}, false
	}
	return c.reload(c.Repo)
}

func (c Collection) reload(repo domain.Repository) (Collection, Ticket, bool) {
	c.Phase = PhaseLoading
	c.Repo = repo
	c.Records = nil
	c.FetchErr = nil
	c.Generation++
	return c, Ticket{Repo: repo, Generation: c.Generation}, true
}

// OnFetchComplete applies a fetch result. Any error yields a loaded, empty
// collection. A successful result is sorted with the default sort state.
// applied is false when the ticket is stale and the state is unchanged.
func (c Collection) OnFetchComplete(ticket Ticket, records []domain.Issue, err error) (next Collection, applied bool) {
	if c.Phase != PhaseLoading || ticket.Generation != c.Generation {
		return c, false
	}

	c.Phase = PhaseLoaded
	if err != nil {
		c.Records = []domain.Issue{}
		c.FetchErr = err
		c.Sort = domain.DefaultSortState
		return c, true
	}

	c.Records, c.Sort = SelectColumn(records, c.Sort, domain.DefaultSortState.Column)
	return c, true
}

// ToggleColumn applies a header click.
func (c Collection) ToggleColumn(column domain.Column) Collection {
	c.Records, c.Sort = ToggleColumn(c.Records, c.Sort, column)
	return c
}

// SelectColumn applies the sort-by selector.
func (c Collection) SelectColumn(column domain.Column) Collection {
	c.Records, c.Sort = SelectColumn(c.Records, c.Sort, column)
	return c
}

// SelectDirection applies the direction selector.
func (c Collection) SelectDirection(direction domain.Direction) Collection {
	c.Records, c.Sort = SelectDirection(c.Records, c.Sort, direction)
	return c
}
