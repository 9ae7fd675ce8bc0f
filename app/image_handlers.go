package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type fiberContextKey struct{}

// FiberContextKey carries the *fiber.Ctx for handlers that read multipart bodies.
var FiberContextKey = fiberContextKey{}

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

type UploadAdImageHandler struct {
	repository     Repository
	images         ImageStore
	eventPublisher events.Publisher
}

func NewUploadAdImageHandler(repository Repository, images ImageStore, eventPublisher events.Publisher) *UploadAdImageHandler {
	return &UploadAdImageHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

type UploadAdImageRequest struct {
	AdID int64 `params:"id"`
}

type UploadAdImageResponse struct {
	Image domain.AdImage `json:"image"`
}

func (h *UploadAdImageHandler) Handle(ctx context.Context, req *UploadAdImageRequest) (*UploadAdImageResponse, error) {
	c, ok := ctx.Value(FiberContextKey).(*fiber.Ctx)
	if !ok {
		return nil, httperror.InternalServerError("upload.no_context", "Fiber context not found", nil)
	}

	if err := authorizeSeller(ctx, h.repository, req.AdID, "upload_ad_image"); err != nil {
		return nil, err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, httperror.BadRequest("upload.missing_file", "Image file is required (use 'image' field)", fiber.Map{"error": err.Error()})
	}

	if file.Size > maxImageSize {
		return nil, httperror.BadRequest("upload.file_too_large", "File size must not exceed 5MB",
			fiber.Map{
				"size_mb": float64(file.Size) / 1024 / 1024,
				"max_mb":  5,
			})
	}

	contentType := file.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, httperror.BadRequest("upload.invalid_content_type", "Only PNG, JPEG/JPG images are allowed",
			fiber.Map{
				"received": contentType,
				"allowed":  []string{"image/png", "image/jpeg", "image/jpg"},
			})
	}

	fileReader, err := file.Open()
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_open_error", "Failed to open uploaded file", err.Error())
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_read_error", "Failed to read file content", err.Error())
	}

	image, err := h.Store(ctx, req.AdID, data, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadAdImageResponse{Image: image}, nil
}

// Store uploads data and records it as the next image of the ad.
func (h *UploadAdImageHandler) Store(ctx context.Context, adID int64, data []byte, contentType string) (domain.AdImage, error) {
	key := fmt.Sprintf("ads/%d/%s%s", adID, uuid.New().String(), allowedImageTypes[contentType])

	if err := h.images.Upload(key, data); err != nil {
		return domain.AdImage{}, httperror.InternalServerError("upload_ad_image.upload.failed", "Failed to upload image to storage", err.Error())
	}

	image, err := h.repository.SaveImage(ctx, adID, h.images.URL(key))
	if err != nil {
		_ = h.images.Delete(key)
		return domain.AdImage{}, httperror.InternalServerError("upload_ad_image.store.failed", "Failed to save image metadata", err.Error())
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdImageUploadedEvent, events.AdImagePayload{
		ID:         image.ID,
		AdID:       adID,
		ImageURL:   image.ImageURL,
		OccurredAt: time.Now(),
	})

	return image, nil
}

func authorizeSeller(ctx context.Context, repository Repository, adID int64, code string) error {
	ad, err := repository.GetAd(ctx, adID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperror.NotFound(code+".not_found", "Ad not found.", nil)
		}
		return httperror.InternalServerError(code+".failed", "Failed to get ad.", nil)
	}
	if ad.SellerID != middleware.UserID(ctx) && !middleware.IsAdmin(ctx) {
		return httperror.Forbidden(code+".forbidden", "You are not authorized to change the images of this ad.", nil)
	}
	return nil
}

type GetAdImagesHandler struct {
	repository Repository
}

func NewGetAdImagesHandler(repository Repository) *GetAdImagesHandler {
	return &GetAdImagesHandler{repository: repository}
}

type GetAdImagesRequest struct {
	AdID int64 `params:"id"`
}

type GetAdImagesResponse struct {
	Images []domain.AdImage `json:"images"`
}

func (h *GetAdImagesHandler) Handle(ctx context.Context, req *GetAdImagesRequest) (*GetAdImagesResponse, error) {
	images, err := h.repository.GetAdImages(ctx, req.AdID)
	if err != nil {
		return nil, httperror.InternalServerError("ad_images.index.failed", "Failed to retrieve images", nil)
	}
	return &GetAdImagesResponse{Images: images}, nil
}

type DeleteAdImageHandler struct {
	repository     Repository
	images         ImageStore
	eventPublisher events.Publisher
}

func NewDeleteAdImageHandler(repository Repository, images ImageStore, eventPublisher events.Publisher) *DeleteAdImageHandler {
	return &DeleteAdImageHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

type DeleteAdImageRequest struct {
	AdID    int64 `params:"id"`
	ImageID int64 `params:"imageId"`
}

type DeleteAdImageResponse struct {
}

func (h *DeleteAdImageHandler) Handle(ctx context.Context, req *DeleteAdImageRequest) (*DeleteAdImageResponse, error) {
	if err := authorizeSeller(ctx, h.repository, req.AdID, "delete_ad_image.destroy"); err != nil {
		return nil, err
	}

	image, err := h.repository.GetAdImage(ctx, req.AdID, req.ImageID)
	if err != nil {
		return nil, httperror.NotFound("delete_ad_image.destroy.not_found", "Image not found.", nil)
	}

	if err := h.images.Delete(h.images.Key(image.ImageURL)); err != nil {
		return nil, httperror.InternalServerError("delete_ad_image.destroy.failed", "Failed to delete image.", err)
	}

	if err := h.repository.DeleteAdImage(ctx, req.AdID, req.ImageID); err != nil {
		return nil, httperror.InternalServerError("delete_ad_image.destroy.failed", "Failed to delete image.", err)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdImageDeletedEvent, events.AdImagePayload{
		ID:         image.ID,
		AdID:       image.AdID,
		ImageURL:   image.ImageURL,
		OccurredAt: time.Now(),
	})

	return &DeleteAdImageResponse{}, httperror.NoContent("delete_ad_image.destroy.success", "Image deleted successfully.", nil)
}
