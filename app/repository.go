package app

import (
	"context"

	"schwarzesbrett/domain"
)

type Repository interface {
	GetAd(ctx context.Context, id int64) (domain.Ad, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	SetUserLocked(ctx context.Context, id int64, locked bool) error
	SetUserRole(ctx context.Context, id int64, role string) error
	SetUserPassword(ctx context.Context, id int64, hash string) error
	GetAdComments(ctx context.Context, adID int64, page, pageSize int) ([]domain.AdComment, error)
	CountAdComments(ctx context.Context, adID int64) (int, error)
	GetCommentByID(ctx context.Context, id int64) (domain.AdComment, error)
	CreateComment(ctx context.Context, adID, authorID int64, content string) (domain.AdComment, error)
	DeleteComment(ctx context.Context, id int64) error
	GetAdImages(ctx context.Context, adID int64) ([]domain.AdImage, error)
	GetAdImage(ctx context.Context, adID, imageID int64) (domain.AdImage, error)
	SaveImage(ctx context.Context, adID int64, url string) (domain.AdImage, error)
	DeleteAdImage(ctx context.Context, adID, imageID int64) error
	CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error)
	Inbox(ctx context.Context, recipientID int64, page, pageSize int) ([]domain.Message, error)
	CountInbox(ctx context.Context, recipientID int64) (int, error)
	MarkMessageRead(ctx context.Context, id, recipientID int64) (domain.Message, error)
	UpsertRating(ctx context.Context, rating domain.Rating) (domain.Rating, error)
	GetRatings(ctx context.Context, ratedID int64) ([]domain.Rating, error)
	FollowUser(ctx context.Context, followerID, followedID int64) error
	UnfollowUser(ctx context.Context, followerID, followedID int64) error
	GetSetting(ctx context.Context, key string) (domain.SiteSetting, error)
	GetSettings(ctx context.Context) ([]domain.SiteSetting, error)
	PutSetting(ctx context.Context, key, value string) (domain.SiteSetting, error)
}

// ImageStore keeps uploaded ad images.
type ImageStore interface {
	Upload(key string, data []byte) error
	Delete(key string) error
	URL(key string) string
	Key(url string) string
}
