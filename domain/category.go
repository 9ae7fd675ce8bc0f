package domain

import "time"

// RootCategoryID is the synthetic root every top-level category hangs off.
const RootCategoryID int64 = 0

type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ParentID    int64     `json:"parentId" db:"parent_id"`
	ChildCount  int       `json:"childCount" db:"child_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
