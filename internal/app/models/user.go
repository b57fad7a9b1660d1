package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64       `json:"id" db:"id" example:"1"`
	Email           string      `json:"email" db:"email" example:"user@example.com"`
	Password        string      `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	FirstName       string      `json:"firstName" db:"first_name" example:"Alice"`
	LastName        string      `json:"lastName" db:"last_name" example:"Doe"`
	RoleType        RoleType    `json:"roleType" db:"role_type" example:"STUDENT"`
	DepartmentID    int64       `json:"departmentId" db:"department_id"`
	IsActive        bool        `json:"isActive" db:"is_active" example:"false"`
	EmailVerifiedAt *time.Time  `json:"emailVerifiedAt,omitempty" db:"email_verified_at"`
	LastLoginAt     *time.Time  `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
	Department      *Department `json:"department,omitempty"` // Relation, no db tag
}

// EmailVerified reports whether the user has confirmed control of their
// email address via OTP.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
