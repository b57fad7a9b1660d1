package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// OtpRepository handles database operations for email one-time codes.
// The schema enforces one row per (user, purpose); issuing a new code is
// an upsert that resets the row's verification state.
type OtpRepository struct {
	db *pgxpool.Pool
}

// NewOtpRepository creates a new OtpRepository
func NewOtpRepository(db *pgxpool.Pool) *OtpRepository {
	return &OtpRepository{db: db}
}

// Upsert writes the single live code for a user and purpose. Takes a
// Querier so registration can run it in the same transaction as the user
// insert.
func (r *OtpRepository) Upsert(ctx context.Context, q Querier, userID int64, purpose models.OtpPurpose, code string, expiresAt time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO email_otps (user_id, purpose, code, expires_at, verified_at, attempts)
		VALUES ($1, $2, $3, $4, NULL, 0)
		ON CONFLICT (user_id, purpose) DO UPDATE
		SET code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    verified_at = NULL,
		    attempts = 0,
		    updated_at = NOW()`,
		userID, purpose, code, expiresAt)
	if err != nil {
		return fmt.Errorf("error upserting otp: %w", err)
	}
	return nil
}

// FindUnverified retrieves the live unverified code row matching
// user+purpose+code, or apperrors.ErrInvalidOtp when none matches.
// Expiry is the caller's check; it is a verification-time decision.
func (r *OtpRepository) FindUnverified(ctx context.Context, userID int64, purpose models.OtpPurpose, code string) (*models.EmailOtp, error) {
	otp := &models.EmailOtp{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, code, purpose, expires_at, verified_at, attempts, created_at, updated_at
		FROM email_otps
		WHERE user_id = $1 AND purpose = $2 AND code = $3 AND verified_at IS NULL`,
		userID, purpose, code).Scan(
		&otp.ID, &otp.UserID, &otp.Code, &otp.Purpose, &otp.ExpiresAt,
		&otp.VerifiedAt, &otp.Attempts, &otp.CreatedAt, &otp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidOtp
		}
		return nil, fmt.Errorf("error finding otp: %w", err)
	}
	return otp, nil
}

// MarkVerified consumes a code with an atomic conditional update. The
// verified_at IS NULL guard makes consumption one-time under concurrent
// verify attempts; the loser sees false.
func (r *OtpRepository) MarkVerified(ctx context.Context, q Querier, otpID int64, at time.Time) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE email_otps SET verified_at = $2, updated_at = NOW()
		WHERE id = $1 AND verified_at IS NULL`,
		otpID, at)
	if err != nil {
		return false, fmt.Errorf("error marking otp verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementAttempts bumps the failed-attempt counter for the live row.
// The counter is recorded but no lockout threshold is enforced.
func (r *OtpRepository) IncrementAttempts(ctx context.Context, userID int64, purpose models.OtpPurpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_otps SET attempts = attempts + 1, updated_at = NOW()
		WHERE user_id = $1 AND purpose = $2`,
		userID, purpose)
	if err != nil {
		return fmt.Errorf("error incrementing otp attempts: %w", err)
	}
	return nil
}

// Delete removes the code row for a user and purpose. Used when a code is
// found expired at verification time.
func (r *OtpRepository) Delete(ctx context.Context, userID int64, purpose models.OtpPurpose) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM email_otps WHERE user_id = $1 AND purpose = $2`,
		userID, purpose)
	if err != nil {
		return fmt.Errorf("error deleting otp: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired unverified rows. Housekeeping only;
// expiry is always re-checked at verification time.
func (r *OtpRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM email_otps WHERE verified_at IS NULL AND expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("error deleting expired otps: %w", err)
	}
	return nil
}
