package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/dberrors"
)

// DepartmentRepository handles department database operations
type DepartmentRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a department
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) (int64, error) {
	sql, args, err := r.sb.Insert("departments").
		Columns("name", "code").
		Values(dept.Name, dept.Code).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create department query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrDepartmentAlreadyExists
		}
		return 0, fmt.Errorf("error creating department: %w", err)
	}

	return id, nil
}

// GetByID retrieves a department by id
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	sql, args, err := r.sb.Select("id", "name", "code").
		From("departments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get department query: %w", err)
	}

	dept := &models.Department{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&dept.ID, &dept.Name, &dept.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error getting department: %w", err)
	}

	return dept, nil
}

// Exists reports whether a department with the given id exists
func (r *DepartmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking department existence: %w", err)
	}
	return exists, nil
}

// List returns all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	sql, args, err := r.sb.Select("id", "name", "code").
		From("departments").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		dept := &models.Department{}
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Code); err != nil {
			return nil, fmt.Errorf("error scanning department: %w", err)
		}
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}

	return departments, nil
}

// Update modifies a department's name and code
func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	sql, args, err := r.sb.Update("departments").
		Set("name", dept.Name).
		Set("code", dept.Code).
		Where(squirrel.Eq{"id": dept.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}

// Delete removes a department. Fails while users or materials still
// reference it.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}
