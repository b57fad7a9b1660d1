package services

import (
	"context"
	"time"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/db"
)

// Store contracts consumed by the account and payment services. The
// concrete repositories satisfy them; tests substitute in-memory fakes.

// dbConn opens transactions and serves single-statement writes.
// Satisfied by *pgxpool.Pool.
type dbConn interface {
	db.TxRunner
	repositories.Querier
}

type userStore interface {
	CreateUser(ctx context.Context, q repositories.Querier, user *models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetEmailVerified(ctx context.Context, q repositories.Querier, userID int64, at time.Time) error
	SetActive(ctx context.Context, q repositories.Querier, userID int64, active bool) error
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

type otpStore interface {
	Upsert(ctx context.Context, q repositories.Querier, userID int64, purpose models.OtpPurpose, code string, expiresAt time.Time) error
	FindUnverified(ctx context.Context, userID int64, purpose models.OtpPurpose, code string) (*models.EmailOtp, error)
	MarkVerified(ctx context.Context, q repositories.Querier, otpID int64, at time.Time) (bool, error)
	IncrementAttempts(ctx context.Context, userID int64, purpose models.OtpPurpose) error
	Delete(ctx context.Context, userID int64, purpose models.OtpPurpose) error
}

type tokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (userID int64, expiryDate time.Time, isRevoked bool, err error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

type departmentStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type paymentStore interface {
	Create(ctx context.Context, payment *models.Payment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Payment, error)
	List(ctx context.Context, status models.PaymentStatus, page, pageSize int) ([]*models.Payment, int64, error)
	Approve(ctx context.Context, q repositories.Querier, paymentID, adminID int64, at time.Time) (bool, error)
	Deny(ctx context.Context, q repositories.Querier, paymentID, adminID int64, reason string, at time.Time) (bool, error)
}

type subscriptionStore interface {
	Upsert(ctx context.Context, q repositories.Querier, userID int64, startDate, endDate time.Time) (*models.Subscription, error)
}
