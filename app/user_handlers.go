package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"schwarzesbrett/app/view"
	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/listing"
	"schwarzesbrett/pkg/viewstate"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserHandler struct {
	repository     Repository
	eventPublisher events.Publisher
	cost           int
}

func NewRegisterUserHandler(repository Repository, eventPublisher events.Publisher) *RegisterUserHandler {
	return &RegisterUserHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
		cost:           bcrypt.DefaultCost,
	}
}

type RegisterUserRequest struct {
	Username   string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FirstName  string `json:"firstName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=16"`
}

type UserResponse struct {
	User domain.User `json:"user"`
}

func (h *RegisterUserHandler) Handle(ctx context.Context, req *RegisterUserRequest) (*UserResponse, error) {
	if err := validateRequest("users.register", req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		return nil, httperror.InternalServerError("users.register.hash_failed", "Failed to secure password", nil)
	}

	user, err := h.repository.CreateUser(ctx, domain.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, httperror.Conflict("users.register.taken", "Username or email already registered", nil)
		}
		return nil, httperror.InternalServerError("users.register.failed", "Failed to register user", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.UserExchange, events.UserRegisteredEvent, events.UserPayload{
		ID:         user.ID,
		Username:   user.Username,
		OccurredAt: time.Now(),
	})

	return &UserResponse{User: user}, nil
}

type GetUserHandler struct {
	repository Repository
}

func NewGetUserHandler(repository Repository) *GetUserHandler {
	return &GetUserHandler{repository: repository}
}

type GetUserRequest struct {
	ID int64 `params:"id"`
}

func (h *GetUserHandler) Handle(ctx context.Context, req *GetUserRequest) (*UserResponse, error) {
	user, err := h.repository.GetUser(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("users.show.not_found", "User not found", nil)
		}
		return nil, httperror.InternalServerError("users.show.failed", "Failed to get user", nil)
	}
	return &UserResponse{User: user}, nil
}

// DefaultUserSort is the column the user list starts sorted by.
const DefaultUserSort = "username"

var userColumnTitles = map[string]string{
	"username":   "Username",
	"email":      "Email",
	"name":       "Name",
	"city":       "City",
	"registered": "Registered",
	"rating":     "Rating",
}

// PageSizer supplies the configured rows per page.
type PageSizer interface {
	ItemsPerPage(ctx context.Context) int
}

type GetUsersViewHandler struct {
	source    listing.Source[domain.User, domain.UserScope]
	columns   listing.SortColumns
	store     *viewstate.Store
	pageSizer PageSizer
}

func NewGetUsersViewHandler(
	source listing.Source[domain.User, domain.UserScope],
	columns listing.SortColumns,
	store *viewstate.Store,
	pageSizer PageSizer,
) *GetUsersViewHandler {
	return &GetUsersViewHandler{
		source:    source,
		columns:   columns,
		store:     store,
		pageSizer: pageSizer,
	}
}

type GetUsersViewRequest struct {
	Followed bool `query:"followed"`
	view.Request
}

type GetUsersViewResponse = view.Response[domain.User]

// Handle serves the administrator's user list, or with followed=true the users
// the caller follows.
func (h *GetUsersViewHandler) Handle(ctx context.Context, req *GetUsersViewRequest) (*GetUsersViewResponse, error) {
	if err := view.Validate("users.view", &req.Request); err != nil {
		return nil, err
	}

	name := "users:all"
	scope := domain.UserScope{}
	switch {
	case req.Followed:
		scope.FollowedBy = middleware.UserID(ctx)
		if scope.FollowedBy == 0 {
			return nil, httperror.Unauthorized("users.view.unauthorized", "This view requires a signed in user", nil)
		}
		name = "users:followed"
	case !middleware.IsAdmin(ctx):
		return nil, httperror.Forbidden("users.view.forbidden", "Administrator role required", nil)
	}

	logger := zap.L().With(zap.String("view", name))
	ctrl := listing.NewController(h.source, scope, h.columns, h.pageSizer.ItemsPerPage(ctx), logger)
	return view.Run(ctx, h.store, name, ctrl, DefaultUserSort, userColumnTitles, &req.Request)
}

type FollowUserHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewFollowUserHandler(repository Repository, eventPublisher events.Publisher) *FollowUserHandler {
	return &FollowUserHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type FollowUserRequest struct {
	ID int64 `params:"id"`
}

type FollowUserResponse struct {
	UserID    int64 `json:"userId"`
	Following bool  `json:"following"`
}

func (h *FollowUserHandler) Handle(ctx context.Context, req *FollowUserRequest) (*FollowUserResponse, error) {
	followerID := middleware.UserID(ctx)
	if followerID == req.ID {
		return nil, httperror.BadRequest("users.follow.self", "You cannot follow yourself", nil)
	}

	if _, err := h.repository.GetUser(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("users.follow.not_found", "User not found", nil)
		}
		return nil, httperror.InternalServerError("users.follow.failed", "Failed to get user", nil)
	}

	if err := h.repository.FollowUser(ctx, followerID, req.ID); err != nil {
		return nil, httperror.InternalServerError("users.follow.failed", "Failed to follow user", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.UserExchange, events.UserFollowedEvent, events.UserFollowedPayload{
		FollowerID: followerID,
		FollowedID: req.ID,
		OccurredAt: time.Now(),
	})

	return &FollowUserResponse{UserID: req.ID, Following: true}, nil
}

type UnfollowUserHandler struct {
	repository Repository
}

func NewUnfollowUserHandler(repository Repository) *UnfollowUserHandler {
	return &UnfollowUserHandler{repository: repository}
}

func (h *UnfollowUserHandler) Handle(ctx context.Context, req *FollowUserRequest) (*FollowUserResponse, error) {
	if err := h.repository.UnfollowUser(ctx, middleware.UserID(ctx), req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("users.unfollow.not_following", "You do not follow this user", nil)
		}
		return nil, httperror.InternalServerError("users.unfollow.failed", "Failed to unfollow user", nil)
	}
	return &FollowUserResponse{UserID: req.ID, Following: false}, nil
}
