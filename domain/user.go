package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	City         string    `db:"city" json:"city"`
	PostalCode   string    `db:"postal_code" json:"postalCode"`
	Role         string    `db:"role" json:"role"`
	Locked       bool      `db:"locked" json:"locked"`
	Rating       float64   `db:"rating" json:"rating"`
	RatingCount  int       `db:"rating_count" json:"ratingCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
