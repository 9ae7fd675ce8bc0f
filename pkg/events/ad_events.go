package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	AdDomain         = "ad"
	AdExchange       = "schwarzesbrett.ad"
	CategoryExchange = "schwarzesbrett.category"
	UserExchange     = "schwarzesbrett.user"
)

// Event names
const (
	AdCreatedEvent          = "ad.created"
	AdUpdatedEvent          = "ad.updated"
	AdDeletedEvent          = "ad.deleted"
	AdExpiredEvent          = "ad.expired"
	AdFollowedEvent         = "ad.followed"
	AdCommentCreatedEvent   = "ad.comment.created"
	AdCommentDeletedEvent   = "ad.comment.deleted"
	AdImageUploadedEvent    = "ad.image.uploaded"
	AdImageDeletedEvent     = "ad.image.deleted"
	AdMessageSentEvent      = "ad.message.sent"
	CategoryCreatedEvent    = "category.created"
	CategoryUpdatedEvent    = "category.updated"
	CategoryDeletedEvent    = "category.deleted"
	UserRegisteredEvent     = "user.registered"
	UserRatedEvent          = "user.rated"
	UserFollowedEvent       = "user.followed"
	UserLockChangedEvent    = "user.lock.changed"
	SiteSettingChangedEvent = "site.setting.changed"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

// AdPayload is carried by ad.created and ad.updated.
type AdPayload struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	SellerID   int64           `json:"sellerId"`
	CategoryID int64           `json:"categoryId"`
	Price      decimal.Decimal `json:"price"`
	PriceType  string          `json:"priceType"`
	Status     string          `json:"status"`
	EndsAt     time.Time       `json:"endsAt"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// AdRefPayload is carried by events that only reference an ad.
type AdRefPayload struct {
	AdID       int64     `json:"adId"`
	UserID     int64     `json:"userId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AdCommentPayload struct {
	ID         int64     `json:"id"`
	AdID       int64     `json:"adId"`
	AuthorID   int64     `json:"authorId"`
	Content    string    `json:"content,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AdImagePayload struct {
	ID         int64     `json:"id"`
	AdID       int64     `json:"adId"`
	ImageURL   string    `json:"imageUrl"`
	OccurredAt time.Time `json:"occurredAt"`
}

type MessageSentPayload struct {
	ID          int64     `json:"id"`
	AdID        int64     `json:"adId"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type CategoryPayload struct {
	ID         int64     `json:"id"`
	ParentID   int64     `json:"parentId"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type UserPayload struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username,omitempty"`
	Locked     bool      `json:"locked,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type UserRatedPayload struct {
	RaterID    int64     `json:"raterId"`
	RatedID    int64     `json:"ratedId"`
	Stars      int       `json:"stars"`
	OccurredAt time.Time `json:"occurredAt"`
}

type UserFollowedPayload struct {
	FollowerID int64     `json:"followerId"`
	FollowedID int64     `json:"followedId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type SiteSettingPayload struct {
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
}
