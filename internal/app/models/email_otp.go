package models

import "time"

// OtpTTL is how long a code stays valid after issuance.
const OtpTTL = 10 * time.Minute

// EmailOtp represents the single live one-time code per user and purpose,
// based on the 'email_otps' table. Resends overwrite the row.
type EmailOtp struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"userId" db:"user_id"`
	Code       string     `json:"-" db:"code"` // 6-digit numeric, excluded from JSON
	Purpose    OtpPurpose `json:"purpose" db:"purpose"`
	ExpiresAt  time.Time  `json:"expiresAt" db:"expires_at"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
	Attempts   int        `json:"attempts" db:"attempts"` // tracked, no lockout threshold enforced
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the code is past its wall-clock expiry at t.
func (o *EmailOtp) Expired(t time.Time) bool {
	return t.After(o.ExpiresAt)
}

// Consumed reports whether the code has already been used. A code is
// one-time use: verified_at is set once and never reset except by resend.
func (o *EmailOtp) Consumed() bool {
	return o.VerifiedAt != nil
}
