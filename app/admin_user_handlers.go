package app

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"

	"golang.org/x/crypto/bcrypt"
)

type UpdateUserHandler struct {
	repository     Repository
	eventPublisher events.Publisher
	cost           int
}

func NewUpdateUserHandler(repository Repository, eventPublisher events.Publisher) *UpdateUserHandler {
	return &UpdateUserHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
		cost:           bcrypt.DefaultCost,
	}
}

type UpdateUserRequest struct {
	ID       int64   `params:"id" validate:"required,gt=0"`
	Locked   *bool   `json:"locked,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// Handle applies administrator changes to an account: locking, role and a
// password reset.
func (h *UpdateUserHandler) Handle(ctx context.Context, req *UpdateUserRequest) (*UserResponse, error) {
	if err := validateRequest("admin.users.update", req); err != nil {
		return nil, err
	}

	if req.ID == middleware.UserID(ctx) && (req.Locked != nil || req.Role != nil) {
		return nil, httperror.BadRequest("admin.users.update.self", "Administrators cannot lock or demote themselves", nil)
	}

	user, err := h.repository.GetUser(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("admin.users.update.not_found", "User not found", nil)
		}
		return nil, httperror.InternalServerError("admin.users.update.failed", "Failed to get user", nil)
	}

	if req.Locked != nil && *req.Locked != user.Locked {
		if err := h.repository.SetUserLocked(ctx, user.ID, *req.Locked); err != nil {
			return nil, httperror.InternalServerError("admin.users.update.lock_failed", "Failed to change lock", nil)
		}
		user.Locked = *req.Locked

		events.Emit(ctx, h.eventPublisher, events.AdDomain, events.UserExchange, events.UserLockChangedEvent, events.UserPayload{
			ID:         user.ID,
			Username:   user.Username,
			Locked:     user.Locked,
			OccurredAt: time.Now(),
		})
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := h.repository.SetUserRole(ctx, user.ID, *req.Role); err != nil {
			return nil, httperror.InternalServerError("admin.users.update.role_failed", "Failed to change role", nil)
		}
		user.Role = *req.Role
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), h.cost)
		if err != nil {
			return nil, httperror.InternalServerError("admin.users.update.hash_failed", "Failed to secure password", nil)
		}
		if err := h.repository.SetUserPassword(ctx, user.ID, string(hash)); err != nil {
			return nil, httperror.InternalServerError("admin.users.update.password_failed", "Failed to reset password", nil)
		}
	}

	return &UserResponse{User: user}, nil
}
