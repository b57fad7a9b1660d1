package dto

// CreateDepartmentRequest represents department creation
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Code string `json:"code" binding:"required,max=20"`
}

// UpdateDepartmentRequest represents a department update
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Code string `json:"code" binding:"required,max=20"`
}

// DepartmentResponse represents a department in API responses
type DepartmentResponse struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"Computer Engineering"`
	Code string `json:"code" example:"CENG"`
}
