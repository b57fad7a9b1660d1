package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/repositories"
)

// UserService handles profile access and admin user management
type UserService struct {
	userRepo         *repositories.UserRepository
	paymentRepo      *repositories.PaymentRepository
	subscriptionRepo *repositories.SubscriptionRepository
	materialRepo     *repositories.MaterialRepository
	pool             *pgxpool.Pool
	logger           zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	paymentRepo *repositories.PaymentRepository,
	subscriptionRepo *repositories.SubscriptionRepository,
	materialRepo *repositories.MaterialRepository,
	pool *pgxpool.Pool,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		materialRepo:     materialRepo,
		pool:             pool,
		logger:           logger,
	}
}

// GetByID returns a user by id
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns users matching the admin filter
func (s *UserService) List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

// SetActive activates or deactivates an account
func (s *UserService) SetActive(ctx context.Context, userID int64, active bool) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetActive(ctx, s.pool, userID, active)
}

// Delete removes a user and, via cascade, their dependent rows
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.userRepo.Delete(ctx, userID)
}

// Stats assembles the admin dashboard aggregates
func (s *UserService) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	totalUsers, activeUsers, err := s.userRepo.CountByActive(ctx)
	if err != nil {
		return nil, err
	}

	pendingPayments, err := s.paymentRepo.CountByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}

	activeSubscriptions, err := s.subscriptionRepo.CountActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	totalMaterials, publishedMaterials, err := s.materialRepo.CountByPublished(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminStatsResponse{
		TotalUsers:          totalUsers,
		ActiveUsers:         activeUsers,
		PendingPayments:     pendingPayments,
		ActiveSubscriptions: activeSubscriptions,
		TotalMaterials:      totalMaterials,
		PublishedMaterials:  publishedMaterials,
	}, nil
}
