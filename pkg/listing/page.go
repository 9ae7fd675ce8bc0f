package listing

import "context"

// Source is the data access contract a list view is computed from.
// FetchPage must honour criteria.PageNumber and criteria.PageSize.
type Source[T, S any] interface {
	FetchPage(ctx context.Context, criteria Criteria, scope S) ([]T, error)
	FetchCount(ctx context.Context, criteria Criteria, scope S) (int, error)
}

// SourceFuncs adapts a pair of functions to Source.
type SourceFuncs[T, S any] struct {
	Page  func(ctx context.Context, criteria Criteria, scope S) ([]T, error)
	Count func(ctx context.Context, criteria Criteria, scope S) (int, error)
}

func (f SourceFuncs[T, S]) FetchPage(ctx context.Context, criteria Criteria, scope S) ([]T, error) {
	return f.Page(ctx, criteria, scope)
}

func (f SourceFuncs[T, S]) FetchCount(ctx context.Context, criteria Criteria, scope S) (int, error) {
	return f.Count(ctx, criteria, scope)
}

// Page is one computed page of a list view. It is replaced wholesale, never patched.
type Page[T any] struct {
	Items          []T `json:"items"`
	PageNumber     int `json:"pageNumber"`
	LastPageNumber int `json:"lastPageNumber"`
	TotalItems     int `json:"totalItems"`
}

// LastPageNumber returns max(1, ceil(total/perPage)).
func LastPageNumber(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultItemsPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage bounds page to [1, last].
func ClampPage(page, last int) int {
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// ComputePage counts the matching rows, clamps the requested page and fetches it.
// The caller's criteria is not modified.
func ComputePage[T, S any](ctx context.Context, criteria Criteria, source Source[T, S], scope S) (Page[T], error) {
	total, err := source.FetchCount(ctx, criteria, scope)
	if err != nil {
		return Page[T]{}, classify("fetch count", err)
	}

	last := LastPageNumber(total, criteria.PageSize())
	effective := criteria
	effective.PageNumber = ClampPage(criteria.PageNumber, last)
	effective.ItemsPerPage = criteria.PageSize()

	items, err := source.FetchPage(ctx, effective, scope)
	if err != nil {
		return Page[T]{}, classify("fetch page", err)
	}
	if items == nil {
		items = make([]T, 0)
	}

	return Page[T]{
		Items:          items,
		PageNumber:     effective.PageNumber,
		LastPageNumber: last,
		TotalItems:     total,
	}, nil
}
