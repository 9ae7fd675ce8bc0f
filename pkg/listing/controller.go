package listing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Controller.
type State int

const (
	Uninitialized State = iota
	Ready
	Reloading
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Reloading:
		return "reloading"
	default:
		return "uninitialized"
	}
}

// Reloadable is implemented by every list view.
type Reloadable interface {
	Init(ctx context.Context, defaultSort string) error
	Reload(ctx context.Context) error
}

// Controller drives one list view: it mutates criteria in response to UI events
// and recomputes the displayed page. A Controller belongs to a single view and is
// not safe for concurrent use.
type Controller[T, S any] struct {
	source   Source[T, S]
	scope    S
	columns  SortColumns
	logger   *zap.Logger
	state    State
	criteria Criteria
	page     Page[T]
}

var _ Reloadable = (*Controller[struct{}, struct{}])(nil)

// NewController builds an uninitialized controller over source narrowed by scope.
func NewController[T, S any](source Source[T, S], scope S, columns SortColumns, itemsPerPage int, logger *zap.Logger) *Controller[T, S] {
	if logger == nil {
		logger = zap.L()
	}
	return &Controller[T, S]{
		source:   source,
		scope:    scope,
		columns:  columns,
		logger:   logger,
		criteria: NewCriteria("", itemsPerPage),
		page:     Page[T]{Items: make([]T, 0), PageNumber: 1, LastPageNumber: 1},
	}
}

// Init sets the default sort column and loads page 1.
// A failed load leaves the controller uninitialized with its criteria unchanged.
func (c *Controller[T, S]) Init(ctx context.Context, defaultSort string) error {
	previous := c.criteria
	if err := c.criteria.SetSortBy(defaultSort, c.columns); err != nil {
		return err
	}
	c.criteria.PageNumber = 1
	c.state = Ready
	if err := c.Reload(ctx); err != nil {
		c.criteria = previous
		c.state = Uninitialized
		return err
	}
	return nil
}

// Restore rehydrates a ready controller from persisted criteria without fetching.
func (c *Controller[T, S]) Restore(criteria Criteria, lastPage int) error {
	if err := criteria.SetSortBy(criteria.SortBy, c.columns); err != nil {
		return err
	}
	if criteria.ItemsPerPage < 1 {
		criteria.ItemsPerPage = c.criteria.PageSize()
	}
	if lastPage < 1 {
		lastPage = 1
	}
	criteria.PageNumber = ClampPage(criteria.PageNumber, lastPage)
	c.criteria = criteria
	c.page = Page[T]{Items: make([]T, 0), PageNumber: criteria.PageNumber, LastPageNumber: lastPage}
	c.state = Ready
	return nil
}

// Sort toggles the direction when column is already the sort column, otherwise
// switches to column keeping the direction.
func (c *Controller[T, S]) Sort(ctx context.Context, column string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.columns.Allows(column) {
		return fmt.Errorf("%w: %q", ErrInvalidSortColumn, column)
	}
	return c.mutate(ctx, func(cr *Criteria) {
		if cr.SortBy == column {
			cr.SortAscending = !cr.SortAscending
			return
		}
		cr.SortBy = column
	})
}

func (c *Controller[T, S]) GoToPage(ctx context.Context, n int) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.mutate(ctx, func(cr *Criteria) { cr.PageNumber = n })
}

func (c *Controller[T, S]) GoToNextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.criteria.PageNumber+1)
}

func (c *Controller[T, S]) GoToPrevPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.criteria.PageNumber-1)
}

func (c *Controller[T, S]) GoToFirstPage(ctx context.Context) error {
	return c.GoToPage(ctx, 1)
}

func (c *Controller[T, S]) GoToLastPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.page.LastPageNumber)
}

// Search applies new search terms and starts again at page 1.
func (c *Controller[T, S]) Search(ctx context.Context, term, location string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.mutate(ctx, func(cr *Criteria) {
		cr.SearchTerm = term
		cr.LocationSearch = location
		cr.PageNumber = 1
	})
}

// FilterCategory narrows the view to a category (0 = all) and starts at page 1.
func (c *Controller[T, S]) FilterCategory(ctx context.Context, categoryID int64) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.mutate(ctx, func(cr *Criteria) {
		cr.CategoryID = categoryID
		cr.PageNumber = 1
	})
}

// SetIncludeExpired toggles expired rows and starts at page 1.
func (c *Controller[T, S]) SetIncludeExpired(ctx context.Context, include bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.mutate(ctx, func(cr *Criteria) {
		cr.IncludeExpired = include
		cr.PageNumber = 1
	})
}

// Reload recomputes the page for the current criteria. On failure the previous
// page stays displayed and the error is returned.
func (c *Controller[T, S]) Reload(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}

	c.state = Reloading
	defer func() { c.state = Ready }()

	page, err := ComputePage(ctx, c.criteria, c.source, c.scope)
	if err != nil {
		c.logger.Warn("Listing reload failed",
			zap.String("sortBy", c.criteria.SortBy),
			zap.Int("page", c.criteria.PageNumber),
			zap.Error(err),
		)
		return err
	}

	c.page = page
	c.criteria.PageNumber = page.PageNumber
	return nil
}

// mutate applies fn and reloads, rolling the criteria back when the reload fails.
func (c *Controller[T, S]) mutate(ctx context.Context, fn func(*Criteria)) error {
	previous := c.criteria
	fn(&c.criteria)
	if err := c.Reload(ctx); err != nil {
		c.criteria = previous
		return err
	}
	return nil
}

func (c *Controller[T, S]) ready() error {
	if c.state == Uninitialized {
		return ErrNotInitialized
	}
	return nil
}

func (c *Controller[T, S]) PrevEnabled() bool {
	return c.criteria.PageNumber > 1
}

func (c *Controller[T, S]) NextEnabled() bool {
	return c.criteria.PageNumber < c.page.LastPageNumber
}

// SortLabel decorates title with the direction arrow when column is the sort column.
func (c *Controller[T, S]) SortLabel(column, title string) string {
	if column != c.criteria.SortBy {
		return title
	}
	if c.criteria.SortAscending {
		return title + " ↑"
	}
	return title + " ↓"
}

func (c *Controller[T, S]) Criteria() Criteria { return c.criteria }

func (c *Controller[T, S]) Page() Page[T] { return c.page }

func (c *Controller[T, S]) State() State { return c.state }

func (c *Controller[T, S]) Columns() SortColumns { return c.columns }
