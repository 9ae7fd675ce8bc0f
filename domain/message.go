package domain

import "time"

// Message is a private note from a user to the owner of an ad.
type Message struct {
	ID          int64      `json:"id" db:"id"`
	AdID        int64      `json:"adId" db:"ad_id"`
	SenderID    int64      `json:"senderId" db:"sender_id"`
	RecipientID int64      `json:"recipientId" db:"recipient_id"`
	Subject     string     `json:"subject" db:"subject"`
	Body        string     `json:"body" db:"body"`
	ReadAt      *time.Time `json:"readAt" db:"read_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
