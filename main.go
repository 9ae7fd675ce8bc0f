package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schwarzesbrett/app"
	"schwarzesbrett/app/ad"
	"schwarzesbrett/app/category"
	"schwarzesbrett/infra/postgres"
	"schwarzesbrett/internal/container"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/config"
	"schwarzesbrett/pkg/httperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		ctx := context.WithValue(c.UserContext(), app.FiberContextKey, c)

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	appConfig := config.Read()
	logger := container.InitLogger(appConfig.LogLevel)
	defer logger.Sync()
	zap.L().Info("schwarzesbrett api starting...", zap.String("service", appConfig.ServiceName))

	deps, err := container.New(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	if err := deps.Repository.Migrate(); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	fiberApp := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    8 * 1024 * 1024,
	})

	registerRoutes(fiberApp, deps)

	go func() {
		if err := fiberApp.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(fiberApp)
}

func registerRoutes(fiberApp *fiber.App, deps *container.Container) {
	repo := deps.Repository
	publisher := deps.Publisher
	images := deps.Images()

	adsView := ad.NewGetAdsViewHandler(repo.Ads(), postgres.AdSortColumns, deps.ViewState, deps.Settings)
	usersView := app.NewGetUsersViewHandler(repo.Users(), postgres.UserSortColumns, deps.ViewState, deps.Settings)
	categoryTree := category.NewGetCategoryTreeHandler(deps.Categories, deps.ViewState, adsView)

	requireUser := middleware.NewSecurityHeadersMiddleware()
	activeUser := middleware.NewActiveUserMiddleware(repo)
	admin := middleware.NewAdminMiddleware()

	authed := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{requireUser, activeUser, h}
	}
	adminOnly := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{requireUser, activeUser, admin, h}
	}

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		if !deps.Healthy(c.UserContext()) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := fiberApp.Group("/api/v1", middleware.NewOptionalIdentityMiddleware())

	api.Get("/ads/views/:view", handle[ad.GetAdsViewRequest, ad.GetAdsViewResponse](adsView))
	api.Get("/ads/:id", handle[ad.GetAdRequest, ad.GetAdResponse](ad.NewGetAdHandler(repo, deps.AdCache)))
	api.Post("/ads", authed(handle[ad.CreateAdRequest, ad.CreateAdResponse](ad.NewCreateAdHandler(repo, publisher)))...)
	api.Put("/ads/:id", authed(handle[ad.UpdateAdRequest, ad.UpdateAdResponse](ad.NewUpdateAdHandler(repo, deps.AdCache, publisher)))...)
	api.Delete("/ads/:id", authed(handle[ad.DeleteAdRequest, ad.DeleteAdResponse](ad.NewDeleteAdHandler(repo, deps.AdCache, publisher)))...)
	api.Post("/ads/:id/follow", authed(handle[ad.FollowAdRequest, ad.FollowAdResponse](ad.NewFollowAdHandler(repo, publisher)))...)
	api.Delete("/ads/:id/follow", authed(handle[ad.FollowAdRequest, ad.FollowAdResponse](ad.NewUnfollowAdHandler(repo)))...)

	api.Get("/ads/:id/images", handle[app.GetAdImagesRequest, app.GetAdImagesResponse](app.NewGetAdImagesHandler(repo)))
	api.Post("/ads/:id/images", authed(handle[app.UploadAdImageRequest, app.UploadAdImageResponse](app.NewUploadAdImageHandler(repo, images, publisher)))...)
	api.Delete("/ads/:id/images/:imageId", authed(handle[app.DeleteAdImageRequest, app.DeleteAdImageResponse](app.NewDeleteAdImageHandler(repo, images, publisher)))...)

	api.Get("/ads/:id/comments", handle[app.GetCommentsRequest, app.GetCommentsResponse](app.NewGetCommentsHandler(repo)))
	api.Post("/ads/:id/comments", authed(handle[app.CreateCommentRequest, app.CreateCommentResponse](app.NewCreateCommentHandler(repo, publisher)))...)
	api.Delete("/ads/:id/comments/:commentId", authed(handle[app.DeleteCommentRequest, app.DeleteCommentResponse](app.NewDeleteCommentHandler(repo, publisher)))...)

	api.Post("/ads/:id/messages", authed(handle[app.SendMessageRequest, app.SendMessageResponse](app.NewSendMessageHandler(repo, publisher)))...)
	api.Get("/messages", authed(handle[app.GetInboxRequest, app.GetInboxResponse](app.NewGetInboxHandler(repo)))...)
	api.Post("/messages/:id/read", authed(handle[app.ReadMessageRequest, app.ReadMessageResponse](app.NewReadMessageHandler(repo)))...)

	api.Get("/categories", handle[category.GetCategoriesRequest, category.GetCategoriesResponse](category.NewGetCategoriesHandler(deps.Categories)))
	api.Get("/categories/tree", handle[category.GetCategoryTreeRequest, category.GetCategoryTreeResponse](categoryTree))
	api.Get("/categories/:id", handle[category.GetCategoryRequest, category.GetCategoryResponse](category.NewGetCategoryHandler(deps.Categories)))
	api.Post("/categories", adminOnly(handle[category.CreateCategoryRequest, category.CategoryResponse](category.NewCreateCategoryHandler(deps.Categories, publisher)))...)
	api.Put("/categories/:id", adminOnly(handle[category.UpdateCategoryRequest, category.CategoryResponse](category.NewUpdateCategoryHandler(deps.Categories, publisher)))...)
	api.Delete("/categories/:id", adminOnly(handle[category.DeleteCategoryRequest, category.DeleteCategoryResponse](category.NewDeleteCategoryHandler(deps.Categories, publisher)))...)

	api.Post("/users", handle[app.RegisterUserRequest, app.UserResponse](app.NewRegisterUserHandler(repo, publisher)))
	api.Get("/users", authed(handle[app.GetUsersViewRequest, app.GetUsersViewResponse](usersView))...)
	api.Get("/users/:id", handle[app.GetUserRequest, app.UserResponse](app.NewGetUserHandler(repo)))
	api.Patch("/users/:id", adminOnly(handle[app.UpdateUserRequest, app.UserResponse](app.NewUpdateUserHandler(repo, publisher)))...)
	api.Post("/users/:id/follow", authed(handle[app.FollowUserRequest, app.FollowUserResponse](app.NewFollowUserHandler(repo, publisher)))...)
	api.Delete("/users/:id/follow", authed(handle[app.FollowUserRequest, app.FollowUserResponse](app.NewUnfollowUserHandler(repo)))...)
	api.Get("/users/:id/ratings", handle[app.GetRatingsRequest, app.GetRatingsResponse](app.NewGetRatingsHandler(repo)))
	api.Post("/users/:id/ratings", authed(handle[app.RateUserRequest, app.RateUserResponse](app.NewRateUserHandler(repo, publisher)))...)

	api.Get("/settings", adminOnly(handle[app.GetSettingsRequest, app.GetSettingsResponse](app.NewGetSettingsHandler(repo)))...)
	api.Put("/settings/:key", adminOnly(handle[app.PutSettingRequest, app.PutSettingResponse](app.NewPutSettingHandler(repo, deps.Settings, publisher)))...)
}

func gracefulShutdown(fiberApp *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := fiberApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == fiber.StatusNoContent {
			return c.SendStatus(fiber.StatusNoContent)
		}

		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
