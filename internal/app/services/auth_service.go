package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/db"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/auth"
	"github.com/halit/learnsphere/internal/pkg/email"
	"github.com/halit/learnsphere/internal/pkg/otp"
)

// AuthService handles registration, verification and authentication
type AuthService struct {
	userRepo       userStore
	otpRepo        otpStore
	tokenRepo      tokenStore
	departmentRepo departmentStore
	pool           dbConn
	jwtService     *auth.JWTService
	mailer         email.Service
	dispatcher     *email.Dispatcher
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo userStore,
	otpRepo otpStore,
	tokenRepo tokenStore,
	departmentRepo departmentStore,
	pool dbConn,
	jwtService *auth.JWTService,
	mailer email.Service,
	dispatcher *email.Dispatcher,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		otpRepo:        otpRepo,
		tokenRepo:      tokenRepo,
		departmentRepo: departmentRepo,
		pool:           pool,
		jwtService:     jwtService,
		mailer:         mailer,
		dispatcher:     dispatcher,
		logger:         logger,
	}
}

// Register creates an unverified, inactive student account and issues a
// verification code. The user row and the OTP row are written in one
// transaction; mail delivery happens after commit and cannot fail the
// registration.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// Department must exist before anything is written
	exists, err := s.departmentRepo.Exists(ctx, req.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("error checking department: %w", err)
	}
	if !exists {
		return nil, apperrors.ErrDepartmentNotFound
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("error generating verification code: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Password:     hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RoleType:     models.RoleStudent,
		DepartmentID: req.DepartmentID,
		IsActive:     false,
	}

	// A duplicate email aborts the transaction before the OTP upsert, so
	// no code row ever exists for a registration that failed.
	err = db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		userID, err := s.userRepo.CreateUser(ctx, tx, user)
		if err != nil {
			return err
		}
		user.ID = userID

		return s.otpRepo.Upsert(ctx, tx, userID, models.OtpPurposeEmailVerification,
			code, time.Now().Add(models.OtpTTL))
	})
	if err != nil {
		return nil, err
	}

	emailSent := s.deliverOtp(user, code, models.OtpPurposeEmailVerification)

	return &dto.RegisterResponse{
		UserID:    user.ID,
		Email:     user.Email,
		EmailSent: emailSent,
	}, nil
}

// deliverOtp hands the code to the mail queue, falling back to an inline
// send when the queue is full. Reports whether delivery was accepted.
func (s *AuthService) deliverOtp(user *models.User, code string, purpose models.OtpPurpose) bool {
	toEmail, toName := user.Email, user.FirstName

	var job email.SendFn
	if purpose == models.OtpPurposePasswordReset {
		job = func() error { return s.mailer.SendPasswordResetEmail(toEmail, toName, code) }
	} else {
		job = func() error { return s.mailer.SendOtpEmail(toEmail, toName, code) }
	}

	sent := s.dispatcher.Deliver(job)
	if !sent {
		s.logger.Warn().Str("email", toEmail).Str("purpose", string(purpose)).
			Msg("Verification email could not be delivered")
	}
	return sent
}

// VerifyOtp confirms an emailed code. The row is consumed with a
// conditional update, so of two concurrent verifications exactly one wins.
func (s *AuthService) VerifyOtp(ctx context.Context, req *dto.VerifyOtpRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.EmailVerified() {
		return apperrors.ErrEmailAlreadyVerified
	}

	record, err := s.otpRepo.FindUnverified(ctx, user.ID, models.OtpPurposeEmailVerification, req.Code)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidOtp) {
			// Recorded but not enforced; there is no lockout threshold.
			if incErr := s.otpRepo.IncrementAttempts(ctx, user.ID, models.OtpPurposeEmailVerification); incErr != nil {
				s.logger.Error().Err(incErr).Int64("userID", user.ID).Msg("Failed to record OTP attempt")
			}
		}
		return err
	}

	now := time.Now()
	if record.Expired(now) {
		// An expired code is dead; resend creates a fresh row.
		if delErr := s.otpRepo.Delete(ctx, user.ID, models.OtpPurposeEmailVerification); delErr != nil {
			s.logger.Error().Err(delErr).Int64("userID", user.ID).Msg("Failed to delete expired OTP")
		}
		return apperrors.ErrOtpExpired
	}

	return db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		won, err := s.otpRepo.MarkVerified(ctx, tx, record.ID, now)
		if err != nil {
			return err
		}
		if !won {
			return apperrors.ErrInvalidOtp
		}
		return s.userRepo.SetEmailVerified(ctx, tx, user.ID, now)
	})
}

// ResendOtp regenerates the user's verification code and re-sends it
func (s *AuthService) ResendOtp(ctx context.Context, req *dto.ResendOtpRequest) (*dto.ResendOtpResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified() {
		return nil, apperrors.ErrEmailAlreadyVerified
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("error generating verification code: %w", err)
	}

	err = s.otpRepo.Upsert(ctx, s.pool, user.ID,
		models.OtpPurposeEmailVerification, code, time.Now().Add(models.OtpTTL))
	if err != nil {
		return nil, err
	}

	return &dto.ResendOtpResponse{EmailSent: s.deliverOtp(user, code, models.OtpPurposeEmailVerification)}, nil
}

// Login authenticates a user. Unknown email and wrong password produce the
// same error; only after credentials pass do the verification and
// activation gates apply, in that order.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.EmailVerified() {
		return nil, apperrors.ErrEmailNotVerified
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountNotActivated
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}

	return s.generateTokenResponse(ctx, user)
}

// RefreshToken rotates a refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, expiryDate, isRevoked, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if isRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(expiryDate) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rotation: the old token dies with the new pair
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.generateTokenResponse(ctx, user)
}

// Logout revokes every refresh token of the user
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// ForgotPassword issues a reset code. The response never discloses whether
// the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("email", req.Email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return fmt.Errorf("error generating reset code: %w", err)
	}

	err = s.otpRepo.Upsert(ctx, s.pool, user.ID,
		models.OtpPurposePasswordReset, code, time.Now().Add(models.OtpTTL))
	if err != nil {
		return err
	}

	s.deliverOtp(user, code, models.OtpPurposePasswordReset)
	return nil
}

// ResetPassword sets a new password after validating the emailed code
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	record, err := s.otpRepo.FindUnverified(ctx, user.ID, models.OtpPurposePasswordReset, req.Code)
	if err != nil {
		return err
	}

	now := time.Now()
	if record.Expired(now) {
		if delErr := s.otpRepo.Delete(ctx, user.ID, models.OtpPurposePasswordReset); delErr != nil {
			s.logger.Error().Err(delErr).Int64("userID", user.ID).Msg("Failed to delete expired OTP")
		}
		return apperrors.ErrOtpExpired
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		won, err := s.otpRepo.MarkVerified(ctx, tx, record.ID, now)
		if err != nil {
			return err
		}
		if !won {
			return apperrors.ErrInvalidOtp
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	// A password reset invalidates every open session
	if err := s.tokenRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to revoke tokens after password reset")
	}

	return nil
}

// generateTokenResponse creates an access/refresh pair and persists the
// refresh token
func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	err = s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(expiresIn),
		RefreshExpiresIn: int64(refreshExpiresIn),
	}, nil
}
