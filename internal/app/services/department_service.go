package services

import (
	"context"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/repositories"
)

// DepartmentService handles department operations
type DepartmentService struct {
	departmentRepo *repositories.DepartmentRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departmentRepo *repositories.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departmentRepo: departmentRepo}
}

// List returns all departments
func (s *DepartmentService) List(ctx context.Context) ([]*models.Department, error) {
	return s.departmentRepo.List(ctx)
}

// Get returns a department by id
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

// Create adds a department
func (s *DepartmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	dept := &models.Department{Name: req.Name, Code: req.Code}
	id, err := s.departmentRepo.Create(ctx, dept)
	if err != nil {
		return nil, err
	}
	dept.ID = id
	return dept, nil
}

// Update modifies a department
func (s *DepartmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	dept := &models.Department{ID: id, Name: req.Name, Code: req.Code}
	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.departmentRepo.Delete(ctx, id)
}
