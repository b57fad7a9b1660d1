package models

import "time"

// Subscription represents a user's paid-access window based on the
// 'subscriptions' table. Provisioned only by payment approval; at most one
// row per user (upsert by user_id), reads take the latest by creation order.
type Subscription struct {
	ID        int64              `json:"id" db:"id"`
	UserID    int64              `json:"userId" db:"user_id"`
	Status    SubscriptionStatus `json:"status" db:"status"`
	StartDate time.Time          `json:"startDate" db:"start_date"`
	EndDate   time.Time          `json:"endDate" db:"end_date"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}

// ActiveAt reports whether the subscription grants access at instant t.
// The end date is inclusive through end of day.
func (s *Subscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	endOfDay := time.Date(s.EndDate.Year(), s.EndDate.Month(), s.EndDate.Day(),
		23, 59, 59, int(time.Second-time.Nanosecond), s.EndDate.Location())
	return !t.After(endOfDay)
}
