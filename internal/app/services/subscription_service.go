package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// SubscriptionService answers subscription access questions
type SubscriptionService struct {
	subscriptionRepo *repositories.SubscriptionRepository
	logger           zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(subscriptionRepo *repositories.SubscriptionRepository, logger zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{subscriptionRepo: subscriptionRepo, logger: logger}
}

// HasActiveSubscription reports whether the user may access gated content
// right now. Instructors and admins manage content and bypass the check;
// a student with no subscription row simply has no access.
func (s *SubscriptionService) HasActiveSubscription(ctx context.Context, userID int64, role models.RoleType) (bool, error) {
	if !role.RequiresSubscription() {
		return true, nil
	}

	sub, err := s.subscriptionRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSubscriptionNotFound) {
			return false, nil
		}
		return false, err
	}

	return sub.ActiveAt(time.Now()), nil
}

// GetCurrent returns the user's latest subscription
func (s *SubscriptionService) GetCurrent(ctx context.Context, userID int64) (*models.Subscription, error) {
	return s.subscriptionRepo.GetLatestByUserID(ctx, userID)
}
