package domain

import "time"

type Rating struct {
	RaterID   int64     `json:"raterId" db:"rater_id"`
	RatedID   int64     `json:"ratedId" db:"rated_id"`
	Stars     int       `json:"stars" db:"stars"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
