package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  SubscriptionStatus
		endDate time.Time
		want    bool
	}{
		{"ends in the future", SubscriptionStatusActive, now.AddDate(0, 6, 0), true},
		{"ends today, morning passed", SubscriptionStatusActive, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"ended yesterday", SubscriptionStatusActive, now.AddDate(0, 0, -1), false},
		{"ended last year", SubscriptionStatusActive, now.AddDate(-1, 0, 0), false},
		{"expired status with future end", SubscriptionStatusExpired, now.AddDate(0, 6, 0), false},
		{"pending status", SubscriptionStatusPending, now.AddDate(0, 6, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{
				Status:    tt.status,
				StartDate: now.AddDate(-1, 0, 0),
				EndDate:   tt.endDate,
			}
			assert.Equal(t, tt.want, sub.ActiveAt(now))
		})
	}
}

// The end date is inclusive through 23:59:59 of its day.
func TestSubscriptionActiveAtEndOfDay(t *testing.T) {
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	sub := &Subscription{Status: SubscriptionStatusActive, EndDate: end}

	assert.True(t, sub.ActiveAt(time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)))
	assert.False(t, sub.ActiveAt(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)))
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleStudent.RequiresSubscription())
	assert.False(t, RoleInstructor.RequiresSubscription())
	assert.False(t, RoleAdmin.RequiresSubscription())

	assert.False(t, RoleStudent.CanManageMaterials())
	assert.True(t, RoleInstructor.CanManageMaterials())
	assert.True(t, RoleAdmin.CanManageMaterials())

	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleInstructor.IsAdmin())

	assert.False(t, RoleType("SUPERUSER").Valid())
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.Terminal())
	assert.True(t, PaymentStatusApproved.Terminal())
	assert.True(t, PaymentStatusDenied.Terminal())
}

func TestEmailOtpExpiredAndConsumed(t *testing.T) {
	now := time.Now()
	otp := &EmailOtp{ExpiresAt: now.Add(OtpTTL)}

	assert.False(t, otp.Expired(now))
	assert.True(t, otp.Expired(now.Add(OtpTTL+time.Second)))

	assert.False(t, otp.Consumed())
	otp.VerifiedAt = &now
	assert.True(t, otp.Consumed())
}
