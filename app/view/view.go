// Package view serves list views over stateless HTTP. Each request restores the
// controller of its View-ID, applies one action and stores the result again.
package view

import (
	"context"
	"errors"

	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/listing"
	"schwarzesbrett/pkg/viewstate"

	"github.com/go-playground/validator/v10"
)

const (
	ActionInit     = "init"
	ActionSort     = "sort"
	ActionPage     = "page"
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionFirst    = "first"
	ActionLast     = "last"
	ActionSearch   = "search"
	ActionCategory = "category"
	ActionExpired  = "expired"
	ActionReload   = "reload"
)

// Request carries one list view event.
type Request struct {
	ViewID     string `reqHeader:"View-ID"`
	Action     string `query:"action" validate:"omitempty,oneof=init sort page next prev first last search category expired reload"`
	Column     string `query:"column" validate:"required_if=Action sort"`
	Page       int    `query:"page" validate:"min=0"`
	Term       string `query:"q" validate:"max=200"`
	Location   string `query:"location" validate:"max=100"`
	CategoryID int64  `query:"category" validate:"min=0"`
	Expired    bool   `query:"expired"`
}

type Column struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type Response[T any] struct {
	ViewID         string           `json:"viewId"`
	Items          []T              `json:"items"`
	PageNumber     int              `json:"pageNumber"`
	LastPageNumber int              `json:"lastPageNumber"`
	TotalItems     int              `json:"totalItems"`
	PrevEnabled    bool             `json:"prevEnabled"`
	NextEnabled    bool             `json:"nextEnabled"`
	Criteria       listing.Criteria `json:"criteria"`
	Columns        []Column         `json:"columns"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request shape; codePrefix namespaces the error code.
func Validate(codePrefix string, req *Request) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return httperror.BadRequest(
				codePrefix+".validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return httperror.InternalServerError(
			codePrefix+".validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	return nil
}

// Run restores the named list of req.ViewID, applies req.Action and persists the
// outcome. Without stored state the controller is initialised with defaultSort
// first.
func Run[T, S any](
	ctx context.Context,
	store *viewstate.Store,
	name string,
	ctrl *listing.Controller[T, S],
	defaultSort string,
	titles map[string]string,
	req *Request,
) (*Response[T], error) {
	viewID := viewstate.ViewID(req.ViewID)

	state, found := store.Listing(ctx, viewID, name)
	if found && req.Action != ActionInit {
		if err := ctrl.Restore(state.Criteria, state.LastPageNumber); err != nil {
			// stale state with a sort column that no longer exists
			store.DropListing(ctx, viewID, name)
			found = false
		}
	}

	if !found || req.Action == ActionInit {
		if err := ctrl.Init(ctx, defaultSort); err != nil {
			return nil, Error(name, err)
		}
	}

	fetched := !found || req.Action == ActionInit
	if err := apply(ctx, ctrl, req, fetched); err != nil {
		// a failed action keeps the previous state, which is still stored
		return nil, Error(name, err)
	}

	page := ctrl.Page()
	store.SaveListing(ctx, viewID, name, viewstate.Listing{
		Criteria:       ctrl.Criteria(),
		LastPageNumber: page.LastPageNumber,
	})

	columns := make([]Column, 0, len(ctrl.Columns()))
	for _, column := range ctrl.Columns().Names() {
		title, ok := titles[column]
		if !ok {
			title = column
		}
		columns = append(columns, Column{Name: column, Label: ctrl.SortLabel(column, title)})
	}

	return &Response[T]{
		ViewID:         viewID,
		Items:          page.Items,
		PageNumber:     page.PageNumber,
		LastPageNumber: page.LastPageNumber,
		TotalItems:     page.TotalItems,
		PrevEnabled:    ctrl.PrevEnabled(),
		NextEnabled:    ctrl.NextEnabled(),
		Criteria:       ctrl.Criteria(),
		Columns:        columns,
	}, nil
}

func apply[T, S any](ctx context.Context, ctrl *listing.Controller[T, S], req *Request, fetched bool) error {
	switch req.Action {
	case ActionSort:
		return ctrl.Sort(ctx, req.Column)
	case ActionPage:
		return ctrl.GoToPage(ctx, req.Page)
	case ActionNext:
		return ctrl.GoToNextPage(ctx)
	case ActionPrev:
		return ctrl.GoToPrevPage(ctx)
	case ActionFirst:
		return ctrl.GoToFirstPage(ctx)
	case ActionLast:
		return ctrl.GoToLastPage(ctx)
	case ActionSearch:
		return ctrl.Search(ctx, req.Term, req.Location)
	case ActionCategory:
		return ctrl.FilterCategory(ctx, req.CategoryID)
	case ActionExpired:
		return ctrl.SetIncludeExpired(ctx, req.Expired)
	default:
		if fetched {
			return nil
		}
		return ctrl.Reload(ctx)
	}
}

// Error maps listing failures onto HTTP errors.
func Error(name string, err error) error {
	switch {
	case errors.Is(err, listing.ErrInvalidSortColumn):
		return httperror.BadRequest(name+".invalid_sort_column", "Unknown sort column", err)
	case errors.Is(err, listing.ErrNotFound):
		return httperror.NotFound(name+".not_found", "The listed entity no longer exists", err)
	case errors.Is(err, listing.ErrDataSourceUnavailable):
		return httperror.ServiceUnavailable(name+".unavailable", "The listing is temporarily unavailable", err)
	default:
		return httperror.InternalServerError(name+".failed", "Failed to load the listing", err)
	}
}
