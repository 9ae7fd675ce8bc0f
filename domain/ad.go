package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AdStatusActive  = "active"
	AdStatusExpired = "expired"
	AdStatusSold    = "sold"
)

const (
	PriceTypeFixed      = "fixed"
	PriceTypeNegotiable = "negotiable"
	PriceTypeFree       = "free"
)

type Ad struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	PriceType   string          `db:"price_type" json:"priceType"`
	CategoryID  int64           `db:"category_id" json:"categoryId"`
	SellerID    int64           `db:"seller_id" json:"sellerId"`
	City        string          `db:"city" json:"city"`
	PostalCode  string          `db:"postal_code" json:"postalCode"`
	Status      string          `db:"status" json:"status"`
	ViewCount   int             `db:"view_count" json:"viewCount"`
	ReleasedAt  time.Time       `db:"released_at" json:"releasedAt"`
	EndsAt      time.Time       `db:"ends_at" json:"endsAt"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsExpired reports whether the ad ran out at now.
func (a Ad) IsExpired(now time.Time) bool {
	return a.Status == AdStatusExpired || !a.EndsAt.After(now)
}
