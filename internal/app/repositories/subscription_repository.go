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

const subscriptionColumns = "id, user_id, status, start_date, end_date, created_at, updated_at"

// SubscriptionRepository handles subscription database operations
type SubscriptionRepository struct {
	db Querier
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetLatestByUserID returns the user's most recent subscription, or
// ErrSubscriptionNotFound when the user has never been provisioned one.
func (r *SubscriptionRepository) GetLatestByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting subscription: %w", err)
	}

	return sub, nil
}

// Upsert creates or refreshes the user's single subscription row. Runs
// inside the payment approval transaction, so it takes a Querier.
func (r *SubscriptionRepository) Upsert(ctx context.Context, q Querier, userID int64, startDate, endDate time.Time) (*models.Subscription, error) {
	query := `INSERT INTO subscriptions (user_id, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(q.QueryRow(ctx, query, userID, models.SubscriptionStatusActive, startDate, endDate))
	if err != nil {
		return nil, fmt.Errorf("error upserting subscription: %w", err)
	}

	return sub, nil
}

// ExpireOverdue flips ACTIVE rows whose end date's day is fully past to
// EXPIRED. The end date grants access through the whole of its day, so
// rows stay ACTIVE on their final day; the cutoff is the start of now's
// day, never now itself.
func (r *SubscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND end_date < $3`,
		models.SubscriptionStatusExpired, models.SubscriptionStatusActive, startOfDay(now))
	if err != nil {
		return 0, fmt.Errorf("error expiring subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountActive counts subscriptions that currently grant access. The end
// date is inclusive through its day, matching Subscription.ActiveAt.
func (r *SubscriptionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE status = $1 AND end_date >= $2`,
		models.SubscriptionStatusActive, startOfDay(now)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active subscriptions: %w", err)
	}
	return count, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
