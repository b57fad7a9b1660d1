package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/auth"
	"github.com/halit/learnsphere/internal/pkg/email"
)

func newAuthServiceForTest(t *testing.T, users *fakeUserStore, otps *fakeOtpStore, tokens *fakeTokenStore) (*AuthService, *fakePool, *fakeMailer, *email.Dispatcher) {
	t.Helper()
	pool := &fakePool{}
	mailer := &fakeMailer{}
	dispatcher := email.NewDispatcher(8, zerolog.Nop())
	t.Cleanup(dispatcher.Close)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "unit-test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "learnsphere",
	})
	departments := &fakeDepartmentStore{ids: map[int64]bool{1: true}}
	svc := NewAuthService(users, otps, tokens, departments, pool, jwtService, mailer, dispatcher, zerolog.Nop())
	return svc, pool, mailer, dispatcher
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hashed
}

func TestLoginStateMachine(t *testing.T) {
	hashed := mustHash(t, "Password1!")
	now := time.Now()

	unverified := &models.User{ID: 1, Email: "unverified@example.com", Password: hashed, RoleType: models.RoleStudent, DepartmentID: 1}
	inactive := &models.User{ID: 2, Email: "inactive@example.com", Password: hashed, RoleType: models.RoleStudent, DepartmentID: 1, EmailVerifiedAt: &now}
	active := &models.User{ID: 3, Email: "active@example.com", Password: hashed, RoleType: models.RoleStudent, DepartmentID: 1, EmailVerifiedAt: &now, IsActive: true}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown email", "nobody@example.com", "Password1!", apperrors.ErrInvalidCredentials},
		{"wrong password", "active@example.com", "WrongPass1!", apperrors.ErrInvalidCredentials},
		{"email not verified", "unverified@example.com", "Password1!", apperrors.ErrEmailNotVerified},
		{"not activated by admin", "inactive@example.com", "Password1!", apperrors.ErrAccountNotActivated},
		{"success", "active@example.com", "Password1!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserStore(unverified, inactive, active)
			tokens := newFakeTokenStore()
			svc, _, _, _ := newAuthServiceForTest(t, users, newFakeOtpStore(), tokens)

			resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				assert.Empty(t, tokens.tokens)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
			assert.Contains(t, tokens.tokens, resp.RefreshToken)
			assert.Equal(t, 1, users.lastLogins)
		})
	}
}

func TestRegisterCreatesInactiveStudentWithCode(t *testing.T) {
	users := newFakeUserStore()
	otps := newFakeOtpStore()
	svc, pool, mailer, dispatcher := newAuthServiceForTest(t, users, otps, newFakeTokenStore())

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "Password1!", DepartmentID: 1,
	})
	require.NoError(t, err)
	assert.True(t, resp.EmailSent)
	assert.True(t, pool.tx.committed)

	user, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.RoleType)
	assert.False(t, user.IsActive)
	assert.False(t, user.EmailVerified())

	row := otps.rows[otpKey{user.ID, models.OtpPurposeEmailVerification}]
	require.NotNil(t, row)
	assert.Len(t, row.Code, 6)

	dispatcher.Close()
	require.Len(t, mailer.sent(&mailer.otps), 1)
	assert.Equal(t, "ada@example.com:"+row.Code, mailer.sent(&mailer.otps)[0])
}

func TestRegisterUnknownDepartment(t *testing.T) {
	svc, _, _, _ := newAuthServiceForTest(t, newFakeUserStore(), newFakeOtpStore(), newFakeTokenStore())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "Password1!", DepartmentID: 99,
	})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)
}

func TestRegisterDuplicateEmailLeavesNoCode(t *testing.T) {
	existing := &models.User{ID: 1, Email: "taken@example.com", Password: "x", DepartmentID: 1}
	users := newFakeUserStore(existing)
	otps := newFakeOtpStore()
	svc, pool, _, _ := newAuthServiceForTest(t, users, otps, newFakeTokenStore())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "taken@example.com", Password: "Password1!", DepartmentID: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	assert.True(t, pool.tx.rolledBack)
	assert.Empty(t, otps.rows)
}

func TestVerifyOtp(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, verified bool) (*AuthService, *fakeUserStore, *fakeOtpStore, *fakePool) {
		user := &models.User{ID: 1, Email: "ada@example.com", DepartmentID: 1}
		if verified {
			now := time.Now()
			user.EmailVerifiedAt = &now
		}
		users := newFakeUserStore(user)
		otps := newFakeOtpStore()
		require.NoError(t, otps.Upsert(ctx, nil, 1, models.OtpPurposeEmailVerification, "123456", time.Now().Add(models.OtpTTL)))
		svc, pool, _, _ := newAuthServiceForTest(t, users, otps, newFakeTokenStore())
		return svc, users, otps, pool
	}

	t.Run("success marks user verified", func(t *testing.T) {
		svc, users, _, pool := seed(t, false)
		err := svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "123456"})
		require.NoError(t, err)
		assert.True(t, pool.tx.committed)
		assert.Contains(t, users.verified, int64(1))
	})

	t.Run("wrong code records the attempt", func(t *testing.T) {
		svc, _, otps, _ := seed(t, false)
		err := svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "654321"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOtp)
		assert.Equal(t, 1, otps.attempts)
	})

	t.Run("second verification is rejected", func(t *testing.T) {
		svc, _, _, _ := seed(t, false)
		require.NoError(t, svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "123456"}))

		err := svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "123456"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOtp)
	})

	t.Run("already verified account", func(t *testing.T) {
		svc, _, _, _ := seed(t, true)
		err := svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "123456"})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyVerified)
	})

	t.Run("expired code dies and resend recreates it", func(t *testing.T) {
		user := &models.User{ID: 1, Email: "ada@example.com", DepartmentID: 1}
		users := newFakeUserStore(user)
		otps := newFakeOtpStore()
		require.NoError(t, otps.Upsert(ctx, nil, 1, models.OtpPurposeEmailVerification, "123456", time.Now().Add(-time.Minute)))
		svc, _, _, _ := newAuthServiceForTest(t, users, otps, newFakeTokenStore())

		err := svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "ada@example.com", Code: "123456"})
		assert.ErrorIs(t, err, apperrors.ErrOtpExpired)
		assert.Equal(t, 1, otps.deleted)
		assert.Empty(t, otps.rows)

		resp, err := svc.ResendOtp(ctx, &dto.ResendOtpRequest{Email: "ada@example.com"})
		require.NoError(t, err)
		assert.True(t, resp.EmailSent)
		fresh := otps.rows[otpKey{1, models.OtpPurposeEmailVerification}]
		require.NotNil(t, fresh)
		assert.False(t, fresh.Expired(time.Now()))
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	user := &models.User{ID: 1, Email: "ada@example.com", DepartmentID: 1, RoleType: models.RoleStudent, EmailVerifiedAt: &now, IsActive: true}

	t.Run("rotates and revokes the old token", func(t *testing.T) {
		users := newFakeUserStore(user)
		tokens := newFakeTokenStore()
		svc, _, _, _ := newAuthServiceForTest(t, users, newFakeOtpStore(), tokens)
		require.NoError(t, tokens.CreateToken(ctx, "old-token", 1, now.Add(time.Hour)))

		resp, err := svc.RefreshToken(ctx, "old-token")
		require.NoError(t, err)
		assert.True(t, tokens.tokens["old-token"].revoked)
		assert.NotEqual(t, "old-token", resp.RefreshToken)
		assert.Contains(t, tokens.tokens, resp.RefreshToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc, _, _, _ := newAuthServiceForTest(t, newFakeUserStore(user), newFakeOtpStore(), tokens)
		require.NoError(t, tokens.CreateToken(ctx, "revoked-token", 1, now.Add(time.Hour)))
		require.NoError(t, tokens.RevokeToken(ctx, "revoked-token"))

		_, err := svc.RefreshToken(ctx, "revoked-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("expired token", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc, _, _, _ := newAuthServiceForTest(t, newFakeUserStore(user), newFakeOtpStore(), tokens)
		require.NoError(t, tokens.CreateToken(ctx, "stale-token", 1, now.Add(-time.Hour)))

		_, err := svc.RefreshToken(ctx, "stale-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _, _ := newAuthServiceForTest(t, newFakeUserStore(user), newFakeOtpStore(), newFakeTokenStore())
		_, err := svc.RefreshToken(ctx, "missing-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	})
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	otps := newFakeOtpStore()
	svc, _, mailer, dispatcher := newAuthServiceForTest(t, newFakeUserStore(), otps, newFakeTokenStore())

	err := svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, otps.rows)

	dispatcher.Close()
	assert.Empty(t, mailer.sent(&mailer.resets))
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Email: "ada@example.com", Password: mustHash(t, "OldPass1!"), DepartmentID: 1}
	users := newFakeUserStore(user)
	otps := newFakeOtpStore()
	tokens := newFakeTokenStore()
	require.NoError(t, otps.Upsert(ctx, nil, 1, models.OtpPurposePasswordReset, "123456", time.Now().Add(models.OtpTTL)))
	require.NoError(t, tokens.CreateToken(ctx, "open-session", 1, time.Now().Add(time.Hour)))
	svc, _, _, _ := newAuthServiceForTest(t, users, otps, tokens)

	err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "ada@example.com", Code: "123456", NewPassword: "NewPass1!"})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(users.passwords[1], "NewPass1!"))
	assert.True(t, tokens.tokens["open-session"].revoked)
	assert.Contains(t, tokens.revokedAll, int64(1))
}
