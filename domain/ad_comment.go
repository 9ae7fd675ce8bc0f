package domain

import "time"

type AdComment struct {
	ID        int64     `json:"id" db:"id"`
	AdID      int64     `json:"adId" db:"ad_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
