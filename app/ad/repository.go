package ad

import (
	"context"

	"schwarzesbrett/domain"
)

type Repository interface {
	GetAd(ctx context.Context, id int64) (domain.Ad, error)
	CreateAd(ctx context.Context, ad domain.Ad) (domain.Ad, error)
	UpdateAd(ctx context.Context, ad domain.Ad) error
	DeleteAd(ctx context.Context, id int64) error
	IncrementAdViews(ctx context.Context, id int64) error
	GetAdImages(ctx context.Context, adID int64) ([]domain.AdImage, error)
	GetCategoryByID(ctx context.Context, id int64) (domain.Category, error)
	FollowAd(ctx context.Context, userID, adID int64) error
	UnfollowAd(ctx context.Context, userID, adID int64) error
}

// PageSizer supplies the configured rows per page.
type PageSizer interface {
	ItemsPerPage(ctx context.Context) int
}
