package dto

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	DepartmentID int64  `json:"departmentId" binding:"required,min=1"`
}

// RegisterResponse is returned after a registration is created. EmailSent
// reports delivery of the verification code, not registration success.
type RegisterResponse struct {
	UserID    int64  `json:"userId" example:"1"`
	Email     string `json:"email" example:"alice@example.com"`
	EmailSent bool   `json:"emailSent" example:"true"`
}

// VerifyOtpRequest represents an OTP verification request
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResendOtpRequest represents an OTP resend request
type ResendOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOtpResponse reports delivery of the regenerated code.
type ResendOtpResponse struct {
	EmailSent bool `json:"emailSent" example:"true"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest requests a password reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest resets a password with an emailed code
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
