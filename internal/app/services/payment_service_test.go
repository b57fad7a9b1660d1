package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/email"
)

func newPaymentServiceForTest(t *testing.T, payments *fakePaymentStore, subs *fakeSubscriptionStore, users *fakeUserStore) (*PaymentService, *fakePool, *fakeMailer, *email.Dispatcher) {
	t.Helper()
	pool := &fakePool{}
	mailer := &fakeMailer{}
	dispatcher := email.NewDispatcher(8, zerolog.Nop())
	t.Cleanup(dispatcher.Close)
	svc := NewPaymentService(payments, subs, users, pool, nil, mailer, dispatcher, zerolog.Nop())
	return svc, pool, mailer, dispatcher
}

func pendingPayment(id, userID int64) *models.Payment {
	return &models.Payment{
		ID: id, UserID: userID, Amount: 49.90,
		TransactionID: "TX-0001", Status: models.PaymentStatusPending,
	}
}

func TestApproveProvisionsSubscriptionAndActivates(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 10, Email: "student@example.com", DepartmentID: 1})
	payments := newFakePaymentStore(pendingPayment(1, 10))
	subs := &fakeSubscriptionStore{}
	svc, pool, mailer, dispatcher := newPaymentServiceForTest(t, payments, subs, users)

	before := time.Now()
	sub, err := svc.Approve(context.Background(), 1, 99)
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.True(t, pool.tx.committed)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, int64(10), subs.userID)
	assert.WithinDuration(t, before.Add(SubscriptionDuration), subs.end, time.Minute)
	assert.True(t, users.activated[10])

	dispatcher.Close()
	assert.Equal(t, []string{"student@example.com"}, mailer.sent(&mailer.approved))
}

func TestApproveRollsBackWhenProvisioningFails(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 10, Email: "student@example.com", DepartmentID: 1})
	payments := newFakePaymentStore(pendingPayment(1, 10))
	subs := &fakeSubscriptionStore{upsertErr: errors.New("subscriptions table unavailable")}
	svc, pool, mailer, dispatcher := newPaymentServiceForTest(t, payments, subs, users)

	_, err := svc.Approve(context.Background(), 1, 99)
	require.Error(t, err)

	assert.True(t, pool.tx.rolledBack)
	assert.False(t, pool.tx.committed)
	assert.Empty(t, users.activated)

	// Nothing was committed, so the payment still reads PENDING and a
	// retry goes through the full resolution again.
	p, getErr := payments.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, models.PaymentStatusPending, p.Status)

	dispatcher.Close()
	assert.Empty(t, mailer.sent(&mailer.approved))
}

func TestApproveResolvedPayment(t *testing.T) {
	resolved := pendingPayment(1, 10)
	resolved.Status = models.PaymentStatusApproved
	payments := newFakePaymentStore(resolved)
	svc, _, _, _ := newPaymentServiceForTest(t, payments, &fakeSubscriptionStore{}, newFakeUserStore())

	_, err := svc.Approve(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadyResolved)
	assert.Zero(t, payments.approveCalls)
}

func TestApproveLosesConditionalUpdate(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 10, Email: "student@example.com", DepartmentID: 1})
	payments := newFakePaymentStore(pendingPayment(1, 10))
	payments.approveWon = false
	svc, pool, _, _ := newPaymentServiceForTest(t, payments, &fakeSubscriptionStore{}, users)

	_, err := svc.Approve(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadyResolved)
	assert.True(t, pool.tx.rolledBack)
	assert.Empty(t, users.activated)
}

func TestDenySendsReasonWithoutProvisioning(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 10, Email: "student@example.com", DepartmentID: 1})
	payments := newFakePaymentStore(pendingPayment(1, 10))
	subs := &fakeSubscriptionStore{}
	svc, _, mailer, dispatcher := newPaymentServiceForTest(t, payments, subs, users)

	err := svc.Deny(context.Background(), 1, 99, "transaction id not found")
	require.NoError(t, err)
	assert.Equal(t, 1, payments.denyCalls)
	assert.Equal(t, "transaction id not found", payments.deniedReason)
	assert.Zero(t, subs.userID)
	assert.Empty(t, users.activated)

	dispatcher.Close()
	assert.Equal(t, []string{"student@example.com:transaction id not found"}, mailer.sent(&mailer.denied))
}

func TestDenyResolvedPayment(t *testing.T) {
	resolved := pendingPayment(1, 10)
	resolved.Status = models.PaymentStatusDenied
	payments := newFakePaymentStore(resolved)
	svc, _, _, _ := newPaymentServiceForTest(t, payments, &fakeSubscriptionStore{}, newFakeUserStore())

	err := svc.Deny(context.Background(), 1, 99, "late")
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadyResolved)
	assert.Zero(t, payments.denyCalls)
}
