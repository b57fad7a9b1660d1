package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/db"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/email"
	"github.com/halit/learnsphere/internal/pkg/filestorage"
)

// SubscriptionDuration is how long an approved payment grants access.
const SubscriptionDuration = 365 * 24 * time.Hour

// PaymentService handles payment submission and admin review
type PaymentService struct {
	paymentRepo      paymentStore
	subscriptionRepo subscriptionStore
	userRepo         userStore
	pool             dbConn
	fileStorage      filestorage.FileStorage
	mailer           email.Service
	dispatcher       *email.Dispatcher
	logger           zerolog.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo paymentStore,
	subscriptionRepo subscriptionStore,
	userRepo userStore,
	pool dbConn,
	fileStorage filestorage.FileStorage,
	mailer email.Service,
	dispatcher *email.Dispatcher,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		pool:             pool,
		fileStorage:      fileStorage,
		mailer:           mailer,
		dispatcher:       dispatcher,
		logger:           logger,
	}
}

// Submit records a pending payment with its proof document
func (s *PaymentService) Submit(ctx context.Context, userID int64, req *dto.SubmitPaymentRequest, proof *multipart.FileHeader) (*models.Payment, error) {
	stored, err := s.fileStorage.Save(proof, filestorage.SubdirProofs)
	if err != nil {
		return nil, fmt.Errorf("error storing payment proof: %w", err)
	}

	payment := &models.Payment{
		UserID:        userID,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		ProofPath:     stored.Path,
		Status:        models.PaymentStatusPending,
	}

	id, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		// The proof file is orphaned if the insert failed; remove it
		if delErr := s.fileStorage.Delete(stored.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", stored.Path).Msg("Failed to clean up payment proof")
		}
		return nil, err
	}

	payment.ID = id
	payment.CreatedAt = time.Now()
	return payment, nil
}

// ListForUser returns the user's own payment history
func (s *PaymentService) ListForUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	return s.paymentRepo.ListByUserID(ctx, userID)
}

// List returns payments for the admin review queue
func (s *PaymentService) List(ctx context.Context, status models.PaymentStatus, page, pageSize int) ([]*models.Payment, int64, error) {
	if status != "" && !statusFilterValid(status) {
		return nil, 0, apperrors.NewBadRequestError("invalid payment status filter")
	}
	return s.paymentRepo.List(ctx, status, page, pageSize)
}

func statusFilterValid(status models.PaymentStatus) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusApproved, models.PaymentStatusDenied:
		return true
	}
	return false
}

// Approve resolves a pending payment and provisions access. The payment
// update, the subscription upsert and the account activation commit
// together or not at all; the notification goes out only after commit and
// its failure never undoes the approval.
func (s *PaymentService) Approve(ctx context.Context, paymentID, adminID int64) (*models.Subscription, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return nil, apperrors.ErrPaymentAlreadyResolved
	}

	now := time.Now()
	var subscription *models.Subscription

	err = db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		won, err := s.paymentRepo.Approve(ctx, tx, paymentID, adminID, now)
		if err != nil {
			return err
		}
		if !won {
			// Another admin resolved it between the read and the update
			return apperrors.ErrPaymentAlreadyResolved
		}

		subscription, err = s.subscriptionRepo.Upsert(ctx, tx, payment.UserID, now, now.Add(SubscriptionDuration))
		if err != nil {
			return err
		}

		return s.userRepo.SetActive(ctx, tx, payment.UserID, true)
	})
	if err != nil {
		return nil, err
	}

	s.notifyResolution(ctx, payment.UserID, "", true)
	return subscription, nil
}

// Deny resolves a pending payment with a reason. No subscription or
// activation changes happen.
func (s *PaymentService) Deny(ctx context.Context, paymentID, adminID int64, reason string) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status.Terminal() {
		return apperrors.ErrPaymentAlreadyResolved
	}

	won, err := s.paymentRepo.Deny(ctx, s.pool, paymentID, adminID, reason, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrPaymentAlreadyResolved
	}

	s.notifyResolution(ctx, payment.UserID, reason, false)
	return nil
}

// notifyResolution sends the outcome mail through the queue, inline on
// overflow. Best effort only.
func (s *PaymentService) notifyResolution(ctx context.Context, userID int64, reason string, approved bool) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to load user for payment notification")
		return
	}

	toEmail, toName := user.Email, user.FirstName
	var job email.SendFn
	if approved {
		job = func() error { return s.mailer.SendPaymentApprovedEmail(toEmail, toName) }
	} else {
		job = func() error { return s.mailer.SendPaymentDeniedEmail(toEmail, toName, reason) }
	}

	if !s.dispatcher.Deliver(job) {
		s.logger.Warn().Int64("userID", userID).Bool("approved", approved).
			Msg("Payment notification could not be delivered")
	}
}
