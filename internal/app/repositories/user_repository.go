package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/dberrors"
	"github.com/halit/learnsphere/internal/pkg/helpers"
)

const userColumns = `id, email, password, first_name, last_name, role_type, department_id,
		is_active, email_verified_at, last_login_at, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.RoleType, &user.DepartmentID, &user.IsActive, &user.EmailVerifiedAt,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user row: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user. It takes a Querier so registration can
// run it inside the same transaction as the OTP upsert. A duplicate email
// fails here, before any OTP row exists.
func (r *UserRepository) CreateUser(ctx context.Context, q Querier, user *models.User) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO users (email, password, first_name, last_name, role_type, department_id, is_active, email_verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		user.Email, user.Password, user.FirstName, user.LastName, user.RoleType,
		user.DepartmentID, user.IsActive, user.EmailVerifiedAt).Scan(&id)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)
	return scanUser(row)
}

// EmailExists checks whether an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// SetEmailVerified records the email verification instant. Takes a
// Querier so OTP verification can pair it with consuming the code.
func (r *UserRepository) SetEmailVerified(ctx context.Context, q Querier, userID int64, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE users SET email_verified_at = $2, updated_at = NOW()
		WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("error setting email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetActive flips the admin activation flag. Takes a Querier so payment
// approval can run it atomically with the subscription upsert.
func (r *UserRepository) SetActive(ctx context.Context, q Querier, userID int64, active bool) error {
	tag, err := q.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW()
		WHERE id = $1`, userID, active)
	if err != nil {
		return fmt.Errorf("error updating activation flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password = $2, updated_at = NOW()
		WHERE id = $1`, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// List retrieves users matching the admin filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error) {
	base := r.sb.Select(userColumns).From("users")
	countQuery := r.sb.Select("COUNT(*)").From("users")

	if filter.Role != nil {
		base = base.Where(squirrel.Eq{"role_type": *filter.Role})
		countQuery = countQuery.Where(squirrel.Eq{"role_type": *filter.Role})
	}
	if filter.IsActive != nil {
		base = base.Where(squirrel.Eq{"is_active": *filter.IsActive})
		countQuery = countQuery.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"email": like},
			squirrel.ILike{"first_name": like},
			squirrel.ILike{"last_name": like},
		}
		base = base.Where(cond)
		countQuery = countQuery.Where(cond)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	listSQL, listArgs, err := base.
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

// Delete removes a user. Admin deletion is unconditional; dependent rows
// go with it via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CountByActive returns total and active user counts for the admin stats.
func (r *UserRepository) CountByActive(ctx context.Context) (total, active int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active)
		FROM users`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("error counting users: %w", err)
	}
	return total, active, nil
}
