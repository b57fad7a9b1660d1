package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

func TestAuthorizeRead(t *testing.T) {
	published := &models.Material{ID: 1, DepartmentID: 10, IsPublished: true}
	draft := &models.Material{ID: 2, DepartmentID: 10, IsPublished: false}
	otherDept := &models.Material{ID: 3, DepartmentID: 20, IsPublished: true}
	otherDeptDraft := &models.Material{ID: 4, DepartmentID: 20, IsPublished: false}

	tests := []struct {
		name     string
		material *models.Material
		role     models.RoleType
		deptID   int64
		wantErr  error
	}{
		{"student reads published own dept", published, models.RoleStudent, 10, nil},
		// Drafts read as not found so their existence stays hidden
		{"student reads draft own dept", draft, models.RoleStudent, 10, apperrors.ErrMaterialNotFound},
		{"student reads published other dept", otherDept, models.RoleStudent, 10, apperrors.ErrPermissionDenied},
		// The published check runs first; a cross-department draft is 404, not 403
		{"student reads draft other dept", otherDeptDraft, models.RoleStudent, 10, apperrors.ErrMaterialNotFound},
		{"instructor reads draft own dept", draft, models.RoleInstructor, 10, nil},
		{"instructor reads draft other dept", otherDeptDraft, models.RoleInstructor, 10, nil},
		{"admin reads anything", otherDeptDraft, models.RoleAdmin, 99, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizeRead(tt.material, tt.role, tt.deptID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		input *string
		want  []string
	}{
		{"nil", nil, nil},
		{"empty", str(""), nil},
		{"single", str("algebra"), []string{"algebra"}},
		{"multiple with spaces", str("algebra, calc ,  geometry"), []string{"algebra", "calc", "geometry"}},
		{"trailing commas", str("algebra,,"), []string{"algebra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTags(tt.input))
		})
	}
}
