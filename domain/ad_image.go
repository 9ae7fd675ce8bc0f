package domain

import "time"

type AdImage struct {
	ID        int64     `json:"id" db:"id"`
	AdID      int64     `json:"adId" db:"ad_id"`
	ImageURL  string    `json:"url" db:"url"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
