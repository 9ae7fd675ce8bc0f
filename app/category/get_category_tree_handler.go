package category

import (
	"context"
	"errors"

	"schwarzesbrett/app/view"
	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/viewstate"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	TreeActionInit   = "init"
	TreeActionExpand = "expand"
	TreeActionSelect = "select"
)

type GetCategoryTreeHandler struct {
	repository categorytree.Repository
	store      *viewstate.Store
	ads        AdFilter
}

// NewGetCategoryTreeHandler serves the category tree of a browsing view; ads may
// be nil when selecting should not filter the ad view.
func NewGetCategoryTreeHandler(repository categorytree.Repository, store *viewstate.Store, ads AdFilter) *GetCategoryTreeHandler {
	return &GetCategoryTreeHandler{
		repository: repository,
		store:      store,
		ads:        ads,
	}
}

type GetCategoryTreeRequest struct {
	ViewID string `reqHeader:"View-ID"`
	Action string `query:"action" validate:"omitempty,oneof=init expand select"`
	ID     int64  `query:"id" validate:"min=0"`
}

type TreeNode struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ChildCount  int        `json:"childCount"`
	State       string     `json:"state"`
	Placeholder bool       `json:"placeholder,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

type Crumb struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GetCategoryTreeResponse struct {
	ViewID     string                    `json:"viewId"`
	Selected   int64                     `json:"selected"`
	Changed    bool                      `json:"changed"`
	Breadcrumb []Crumb                   `json:"breadcrumb"`
	Tree       TreeNode                  `json:"tree"`
	Ads        *view.Response[domain.Ad] `json:"ads,omitempty"`
}

func (h GetCategoryTreeHandler) Handle(ctx context.Context, req *GetCategoryTreeRequest) (*GetCategoryTreeResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return nil, httperror.BadRequest(
				"category.tree.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.tree.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	viewID := viewstate.ViewID(req.ViewID)
	tree, err := h.load(ctx, viewID, req.Action == TreeActionInit)
	if err != nil {
		return nil, httperror.ServiceUnavailable("category.tree.unavailable", "Failed to load categories", err)
	}

	res := &GetCategoryTreeResponse{ViewID: viewID}

	switch req.Action {
	case TreeActionExpand:
		if err := tree.Expand(ctx, req.ID); err != nil {
			return nil, httperror.ServiceUnavailable("category.tree.unavailable", "Failed to load sub categories", err)
		}
		res.Changed = true
	case TreeActionSelect:
		res.Changed = tree.Select(req.ID)
		if res.Changed && h.ads != nil {
			// selecting in the tree also narrows the ads shown beside it
			ads, err := h.ads.FilterCategory(ctx, viewID, req.ID)
			if err != nil {
				zap.L().Warn("Failed to filter ads by category",
					zap.String("viewID", viewID),
					zap.Int64("categoryID", req.ID),
					zap.Error(err),
				)
			} else {
				res.Ads = ads
			}
		}
	}

	h.store.SaveTree(ctx, viewID, tree.Snapshot())

	res.Selected = tree.Selected()
	res.Tree = render(tree, domain.RootCategoryID)
	for _, n := range tree.Breadcrumb() {
		res.Breadcrumb = append(res.Breadcrumb, Crumb{ID: n.ID, Name: n.Name})
	}
	return res, nil
}

func (h GetCategoryTreeHandler) load(ctx context.Context, viewID string, fresh bool) (*categorytree.Tree, error) {
	if !fresh {
		if snapshot, ok := h.store.Tree(ctx, viewID); ok {
			tree, err := categorytree.Restore(h.repository, snapshot, zap.L())
			if err == nil {
				return tree, nil
			}
			zap.L().Warn("Discarding unusable category tree state", zap.String("viewID", viewID), zap.Error(err))
		}
	}

	tree := categorytree.New(h.repository, zap.L())
	if err := tree.Init(ctx); err != nil {
		return nil, err
	}
	return tree, nil
}

func render(tree *categorytree.Tree, id int64) TreeNode {
	node, _ := tree.Node(id)
	out := TreeNode{
		ID:          node.ID,
		Name:        node.Name,
		Description: node.Description,
		ChildCount:  node.ChildCount,
		State:       node.State().String(),
	}
	if node.State() == categorytree.CollapsedKnown {
		return out
	}
	for _, child := range tree.Children(id) {
		if child.Placeholder {
			out.Children = append(out.Children, TreeNode{ID: child.ID, Placeholder: true, State: "placeholder"})
			continue
		}
		out.Children = append(out.Children, render(tree, child.ID))
	}
	return out
}
