package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleAdmin      RoleType = "ADMIN"
)

// Valid reports whether the role is one of the known role types.
// Roles are validated at the boundary; everything past the controllers
// can assume a valid value.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// CanManageMaterials reports whether the role may create, update or
// publish materials.
func (r RoleType) CanManageMaterials() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// RequiresSubscription reports whether material access for this role is
// gated by an active subscription. Instructors and admins manage content
// and bypass the gate.
func (r RoleType) RequiresSubscription() bool {
	return r == RoleStudent
}

// IsAdmin reports whether the role grants administrative access.
func (r RoleType) IsAdmin() bool {
	return r == RoleAdmin
}

// MaterialType defines the representation of a material
type MaterialType string

const (
	MaterialTypeVideo    MaterialType = "VIDEO"
	MaterialTypeDocument MaterialType = "DOCUMENT"
	MaterialTypeYouTube  MaterialType = "YOUTUBE"
)

// Valid reports whether the material type is known.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialTypeVideo, MaterialTypeDocument, MaterialTypeYouTube:
		return true
	}
	return false
}

// IsFileBacked reports whether the type stores an uploaded file.
func (t MaterialType) IsFileBacked() bool {
	return t == MaterialTypeVideo || t == MaterialTypeDocument
}

// PaymentStatus defines the review state of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusDenied   PaymentStatus = "DENIED"
)

// Terminal reports whether the payment can no longer transition.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusDenied
}

// SubscriptionStatus defines the state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPending SubscriptionStatus = "PENDING"
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

// OtpPurpose defines what an OTP code is issued for
type OtpPurpose string

const (
	OtpPurposeEmailVerification OtpPurpose = "EMAIL_VERIFICATION"
	OtpPurposePasswordReset     OtpPurpose = "PASSWORD_RESET"
)
