package models

import "time"

// MaterialLike represents a (user, material) like row. Existence = liked.
type MaterialLike struct {
	UserID     int64     `json:"userId" db:"user_id"`
	MaterialID int64     `json:"materialId" db:"material_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// MaterialComment represents a comment on a material.
type MaterialComment struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	MaterialID int64     `json:"materialId" db:"material_id"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	User       *User     `json:"user,omitempty"` // Relation, no db tag
}

// MaterialProgress represents per-(user, material) progress, upserted.
// Completed is derived: progress >= 100.
type MaterialProgress struct {
	UserID     int64     `json:"userId" db:"user_id"`
	MaterialID int64     `json:"materialId" db:"material_id"`
	Progress   int       `json:"progress" db:"progress"` // 0-100
	Completed  bool      `json:"completed" db:"completed"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
