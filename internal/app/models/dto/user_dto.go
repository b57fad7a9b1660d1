package dto

import (
	"time"

	"github.com/halit/learnsphere/internal/app/models"
)

// UserResponse represents a user in API responses
type UserResponse struct {
	ID              int64           `json:"id"`
	Email           string          `json:"email"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	RoleType        models.RoleType `json:"roleType"`
	DepartmentID    int64           `json:"departmentId"`
	DepartmentName  string          `json:"departmentName,omitempty"`
	IsActive        bool            `json:"isActive"`
	EmailVerifiedAt *time.Time      `json:"emailVerifiedAt,omitempty"`
	LastLoginAt     *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewUserResponse maps a user model to its response shape
func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		RoleType:        u.RoleType,
		DepartmentID:    u.DepartmentID,
		IsActive:        u.IsActive,
		EmailVerifiedAt: u.EmailVerifiedAt,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
	if u.Department != nil {
		resp.DepartmentName = u.Department.Name
	}
	return resp
}

// UserFilter carries admin user-list query parameters
type UserFilter struct {
	Role     *models.RoleType
	IsActive *bool
	Search   string
	Page     int
	Size     int
}

// AdminStatsResponse carries the admin dashboard aggregates
type AdminStatsResponse struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveUsers         int64 `json:"activeUsers"`
	PendingPayments     int64 `json:"pendingPayments"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	TotalMaterials      int64 `json:"totalMaterials"`
	PublishedMaterials  int64 `json:"publishedMaterials"`
}
