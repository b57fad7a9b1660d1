package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/halit/learnsphere/internal/app/repositories"
)

// MaintenanceInterval is how often background cleanup runs.
const MaintenanceInterval = time.Hour

// MaintenanceService runs periodic housekeeping: dropping expired OTP
// codes and refresh tokens and flipping overdue subscriptions to EXPIRED.
// Access checks never depend on it; ActiveAt is evaluated per request and
// this only keeps stored state tidy.
type MaintenanceService struct {
	otpRepo          *repositories.OtpRepository
	tokenRepo        *repositories.TokenRepository
	subscriptionRepo *repositories.SubscriptionRepository
	logger           zerolog.Logger
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(
	otpRepo *repositories.OtpRepository,
	tokenRepo *repositories.TokenRepository,
	subscriptionRepo *repositories.SubscriptionRepository,
	logger zerolog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		otpRepo:          otpRepo,
		tokenRepo:        tokenRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Run executes cleanup on a ticker until ctx is cancelled. One pass runs
// immediately so a restart doesn't postpone cleanup by a full interval.
func (s *MaintenanceService) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *MaintenanceService) sweep(ctx context.Context) {
	if err := s.otpRepo.DeleteExpired(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete expired verification codes")
	}
	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete expired refresh tokens")
	}
	expired, err := s.subscriptionRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to expire overdue subscriptions")
	} else if expired > 0 {
		s.logger.Info().Int64("count", expired).Msg("Marked overdue subscriptions expired")
	}
	s.logger.Debug().Msg("Maintenance sweep completed")
}
