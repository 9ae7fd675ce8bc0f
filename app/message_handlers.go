package app

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
)

type SendMessageHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewSendMessageHandler(repository Repository, eventPublisher events.Publisher) *SendMessageHandler {
	return &SendMessageHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type SendMessageRequest struct {
	AdID    int64  `params:"id" validate:"required,gt=0"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

type SendMessageResponse struct {
	Message domain.Message `json:"message"`
}

// Handle sends a message to the seller of an ad. Delivery beyond the inbox is
// left to consumers of ad.message.sent.
func (h *SendMessageHandler) Handle(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	if err := validateRequest("messages.create", req); err != nil {
		return nil, err
	}

	ad, err := h.repository.GetAd(ctx, req.AdID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("messages.create.not_found", "Ad not found", nil)
		}
		return nil, httperror.InternalServerError("messages.create.failed", "Failed to get ad", nil)
	}

	senderID := middleware.UserID(ctx)
	if ad.SellerID == senderID {
		return nil, httperror.BadRequest("messages.create.own_ad", "You cannot message yourself", nil)
	}

	message, err := h.repository.CreateMessage(ctx, domain.Message{
		AdID:        ad.ID,
		SenderID:    senderID,
		RecipientID: ad.SellerID,
		Subject:     req.Subject,
		Body:        req.Body,
	})
	if err != nil {
		return nil, httperror.InternalServerError("messages.create.failed", "Failed to send message", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdMessageSentEvent, events.MessageSentPayload{
		ID:          message.ID,
		AdID:        ad.ID,
		SenderID:    senderID,
		RecipientID: ad.SellerID,
		OccurredAt:  time.Now(),
	})

	return &SendMessageResponse{Message: message}, nil
}

type GetInboxHandler struct {
	repository Repository
}

func NewGetInboxHandler(repository Repository) *GetInboxHandler {
	return &GetInboxHandler{repository: repository}
}

type GetInboxRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"limit"`
}

type GetInboxResponse struct {
	Messages   []domain.Message `json:"messages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

func (h *GetInboxHandler) Handle(ctx context.Context, req *GetInboxRequest) (*GetInboxResponse, error) {
	page, pageSize := pageBounds(req.Page, req.PageSize, 20)
	userID := middleware.UserID(ctx)

	messages, err := h.repository.Inbox(ctx, userID, page, pageSize)
	if err != nil {
		return nil, httperror.InternalServerError("messages.index.failed", "Failed to retrieve messages", nil)
	}

	totalItems, err := h.repository.CountInbox(ctx, userID)
	if err != nil {
		return nil, httperror.InternalServerError("messages.count.failed", "Failed to count messages", nil)
	}

	return &GetInboxResponse{
		Messages:   messages,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: (totalItems + pageSize - 1) / pageSize,
	}, nil
}

type ReadMessageHandler struct {
	repository Repository
}

func NewReadMessageHandler(repository Repository) *ReadMessageHandler {
	return &ReadMessageHandler{repository: repository}
}

type ReadMessageRequest struct {
	ID int64 `params:"id"`
}

type ReadMessageResponse struct {
	Message domain.Message `json:"message"`
}

func (h *ReadMessageHandler) Handle(ctx context.Context, req *ReadMessageRequest) (*ReadMessageResponse, error) {
	message, err := h.repository.MarkMessageRead(ctx, req.ID, middleware.UserID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("messages.show.not_found", "Message not found", nil)
		}
		return nil, httperror.InternalServerError("messages.show.failed", "Failed to read message", nil)
	}
	return &ReadMessageResponse{Message: message}, nil
}
