package ad

import (
	"context"

	"schwarzesbrett/app/view"
	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/listing"
	"schwarzesbrett/pkg/viewstate"

	"go.uber.org/zap"
)

// DefaultSort is the column every ad view starts sorted by.
const DefaultSort = "released"

var columnTitles = map[string]string{
	"title":    "Title",
	"price":    "Price",
	"released": "Released",
	"ends":     "Ends",
	"city":     "City",
	"views":    "Views",
}

type GetAdsViewHandler struct {
	source    listing.Source[domain.Ad, domain.AdScope]
	columns   listing.SortColumns
	store     *viewstate.Store
	pageSizer PageSizer
}

func NewGetAdsViewHandler(
	source listing.Source[domain.Ad, domain.AdScope],
	columns listing.SortColumns,
	store *viewstate.Store,
	pageSizer PageSizer,
) *GetAdsViewHandler {
	return &GetAdsViewHandler{
		source:    source,
		columns:   columns,
		store:     store,
		pageSizer: pageSizer,
	}
}

type GetAdsViewRequest struct {
	View string `params:"view" validate:"required,oneof=all own followed commented"`
	view.Request
}

type GetAdsViewResponse = view.Response[domain.Ad]

func (h GetAdsViewHandler) Handle(ctx context.Context, req *GetAdsViewRequest) (*GetAdsViewResponse, error) {
	if err := validateRequest("ad.view", req); err != nil {
		return nil, err
	}

	scope := domain.AdScope{Kind: domain.AdScopeKind(req.View), UserID: middleware.UserID(ctx)}
	if scope.NeedsUser() && scope.UserID == 0 {
		return nil, httperror.Unauthorized("ad.view.unauthorized", "This view requires a signed in user", nil)
	}

	return view.Run(ctx, h.store, viewName(req.View), h.controller(ctx, scope), DefaultSort, columnTitles, &req.Request)
}

// FilterCategory narrows the "all" ad view of viewID to a category subtree.
func (h GetAdsViewHandler) FilterCategory(ctx context.Context, viewID string, categoryID int64) (*GetAdsViewResponse, error) {
	req := &view.Request{
		ViewID:     viewID,
		Action:     view.ActionCategory,
		CategoryID: categoryID,
	}
	scope := domain.AdScope{Kind: domain.AdScopeAll}
	return view.Run(ctx, h.store, viewName(string(domain.AdScopeAll)), h.controller(ctx, scope), DefaultSort, columnTitles, req)
}

func (h GetAdsViewHandler) controller(ctx context.Context, scope domain.AdScope) *listing.Controller[domain.Ad, domain.AdScope] {
	logger := zap.L().With(zap.String("view", string(scope.Kind)), zap.Int64("userID", scope.UserID))
	return listing.NewController(h.source, scope, h.columns, h.pageSizer.ItemsPerPage(ctx), logger)
}

func viewName(kind string) string {
	return "ads:" + kind
}
