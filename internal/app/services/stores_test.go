package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// In-memory store fakes backing the account and payment service tests.
// Mutations are applied immediately; transactional visibility is asserted
// through the fake tx's committed/rolledBack flags instead.

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakePool struct {
	repositories.Querier
	tx *fakeTx
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	p.tx = &fakeTx{}
	return p.tx, nil
}

type fakeUserStore struct {
	nextID     int64
	byEmail    map[string]*models.User
	byID       map[int64]*models.User
	activated  map[int64]bool
	verified   map[int64]time.Time
	passwords  map[int64]string
	lastLogins int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{
		byEmail:   map[string]*models.User{},
		byID:      map[int64]*models.User{},
		activated: map[int64]bool{},
		verified:  map[int64]time.Time{},
		passwords: map[int64]string{},
	}
	for _, u := range users {
		s.nextID++
		if u.ID == 0 {
			u.ID = s.nextID
		}
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(_ context.Context, _ repositories.Querier, user *models.User) (int64, error) {
	if _, taken := s.byEmail[user.Email]; taken {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	s.nextID++
	user.ID = s.nextID
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user.ID, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) SetEmailVerified(_ context.Context, _ repositories.Querier, userID int64, at time.Time) error {
	s.verified[userID] = at
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, _ repositories.Querier, userID int64, active bool) error {
	s.activated[userID] = active
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID int64, hashedPassword string) error {
	s.passwords[userID] = hashedPassword
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(context.Context, int64) error {
	s.lastLogins++
	return nil
}

type otpKey struct {
	userID  int64
	purpose models.OtpPurpose
}

type fakeOtpStore struct {
	nextID   int64
	rows     map[otpKey]*models.EmailOtp
	attempts int
	deleted  int
}

func newFakeOtpStore() *fakeOtpStore {
	return &fakeOtpStore{rows: map[otpKey]*models.EmailOtp{}}
}

func (s *fakeOtpStore) Upsert(_ context.Context, _ repositories.Querier, userID int64, purpose models.OtpPurpose, code string, expiresAt time.Time) error {
	s.nextID++
	s.rows[otpKey{userID, purpose}] = &models.EmailOtp{
		ID: s.nextID, UserID: userID, Purpose: purpose, Code: code, ExpiresAt: expiresAt,
	}
	return nil
}

func (s *fakeOtpStore) FindUnverified(_ context.Context, userID int64, purpose models.OtpPurpose, code string) (*models.EmailOtp, error) {
	row, ok := s.rows[otpKey{userID, purpose}]
	if !ok || row.Code != code || row.VerifiedAt != nil {
		return nil, apperrors.ErrInvalidOtp
	}
	return row, nil
}

func (s *fakeOtpStore) MarkVerified(_ context.Context, _ repositories.Querier, otpID int64, at time.Time) (bool, error) {
	for _, row := range s.rows {
		if row.ID == otpID && row.VerifiedAt == nil {
			row.VerifiedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeOtpStore) IncrementAttempts(_ context.Context, userID int64, purpose models.OtpPurpose) error {
	s.attempts++
	if row, ok := s.rows[otpKey{userID, purpose}]; ok {
		row.Attempts++
	}
	return nil
}

func (s *fakeOtpStore) Delete(_ context.Context, userID int64, purpose models.OtpPurpose) error {
	delete(s.rows, otpKey{userID, purpose})
	s.deleted++
	return nil
}

type storedToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	tokens     map[string]*storedToken
	revokedAll []int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*storedToken{}}
}

func (s *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	s.tokens[token] = &storedToken{userID: userID, expiry: expiryDate}
	return nil
}

func (s *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, time.Time, bool, error) {
	t, ok := s.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return t.userID, t.expiry, t.revoked, nil
}

func (s *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	if t, ok := s.tokens[token]; ok {
		t.revoked = true
	}
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID int64) error {
	s.revokedAll = append(s.revokedAll, userID)
	for _, t := range s.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

type fakeDepartmentStore struct {
	ids map[int64]bool
}

func (s *fakeDepartmentStore) Exists(_ context.Context, id int64) (bool, error) {
	return s.ids[id], nil
}

type fakePaymentStore struct {
	payments     map[int64]*models.Payment
	approveWon   bool
	denyWon      bool
	approveCalls int
	denyCalls    int
	deniedReason string
}

func newFakePaymentStore(payments ...*models.Payment) *fakePaymentStore {
	s := &fakePaymentStore{payments: map[int64]*models.Payment{}, approveWon: true, denyWon: true}
	for _, p := range payments {
		s.payments[p.ID] = p
	}
	return s
}

func (s *fakePaymentStore) Create(_ context.Context, payment *models.Payment) (int64, error) {
	id := int64(len(s.payments) + 1)
	payment.ID = id
	s.payments[id] = payment
	return id, nil
}

func (s *fakePaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	return p, nil
}

func (s *fakePaymentStore) ListByUserID(_ context.Context, userID int64) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) List(context.Context, models.PaymentStatus, int, int) ([]*models.Payment, int64, error) {
	return nil, 0, nil
}

func (s *fakePaymentStore) Approve(_ context.Context, _ repositories.Querier, _, _ int64, _ time.Time) (bool, error) {
	s.approveCalls++
	return s.approveWon, nil
}

func (s *fakePaymentStore) Deny(_ context.Context, _ repositories.Querier, _, _ int64, reason string, _ time.Time) (bool, error) {
	s.denyCalls++
	s.deniedReason = reason
	return s.denyWon, nil
}

type fakeSubscriptionStore struct {
	upsertErr error
	userID    int64
	start     time.Time
	end       time.Time
}

func (s *fakeSubscriptionStore) Upsert(_ context.Context, _ repositories.Querier, userID int64, startDate, endDate time.Time) (*models.Subscription, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.userID, s.start, s.end = userID, startDate, endDate
	return &models.Subscription{
		ID: 1, UserID: userID, Status: models.SubscriptionStatusActive,
		StartDate: startDate, EndDate: endDate,
	}, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	otps     []string
	resets   []string
	approved []string
	denied   []string
	sendErr  error
}

func (m *fakeMailer) record(bucket *[]string, entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	*bucket = append(*bucket, entry)
	return nil
}

func (m *fakeMailer) SendOtpEmail(toEmail, _, code string) error {
	return m.record(&m.otps, fmt.Sprintf("%s:%s", toEmail, code))
}

func (m *fakeMailer) SendPasswordResetEmail(toEmail, _, code string) error {
	return m.record(&m.resets, fmt.Sprintf("%s:%s", toEmail, code))
}

func (m *fakeMailer) SendPaymentApprovedEmail(toEmail, _ string) error {
	return m.record(&m.approved, toEmail)
}

func (m *fakeMailer) SendPaymentDeniedEmail(toEmail, _, reason string) error {
	return m.record(&m.denied, fmt.Sprintf("%s:%s", toEmail, reason))
}

func (m *fakeMailer) sent(bucket *[]string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), (*bucket)...)
}
