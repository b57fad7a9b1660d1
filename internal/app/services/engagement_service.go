package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// EngagementService handles likes, comments and progress on materials
type EngagementService struct {
	engagementRepo *repositories.EngagementRepository
	materialRepo   *repositories.MaterialRepository
	logger         zerolog.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	engagementRepo *repositories.EngagementRepository,
	materialRepo *repositories.MaterialRepository,
	logger zerolog.Logger,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		materialRepo:   materialRepo,
		logger:         logger,
	}
}

// loadAccessible fetches the material and applies the read policy; every
// engagement op goes through it.
func (s *EngagementService) loadAccessible(ctx context.Context, materialID int64, user *models.User) (*models.Material, error) {
	m, err := s.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(m, user.RoleType, user.DepartmentID); err != nil {
		return nil, err
	}
	return m, nil
}

// ToggleLike flips the caller's like on a material
func (s *EngagementService) ToggleLike(ctx context.Context, materialID int64, user *models.User) (liked bool, count int64, err error) {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return false, 0, err
	}
	return s.engagementRepo.ToggleLike(ctx, user.ID, materialID)
}

// LikeInfo returns the like count on a material and whether the user has
// liked it. The caller is expected to have passed the read policy already.
func (s *EngagementService) LikeInfo(ctx context.Context, materialID, userID int64) (count int64, liked bool, err error) {
	count, err = s.engagementRepo.LikeCount(ctx, materialID)
	if err != nil {
		return 0, false, err
	}
	liked, err = s.engagementRepo.HasLiked(ctx, userID, materialID)
	if err != nil {
		return 0, false, err
	}
	return count, liked, nil
}

// ListComments returns a material's comments
func (s *EngagementService) ListComments(ctx context.Context, materialID int64, user *models.User) ([]*models.MaterialComment, error) {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return nil, err
	}
	return s.engagementRepo.ListComments(ctx, materialID)
}

// AddComment posts a comment on a material
func (s *EngagementService) AddComment(ctx context.Context, materialID int64, user *models.User, body string) (*models.MaterialComment, error) {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return nil, err
	}
	return s.engagementRepo.CreateComment(ctx, user.ID, materialID, body)
}

// DeleteComment removes a comment. Only its author or an admin may.
func (s *EngagementService) DeleteComment(ctx context.Context, materialID, commentID int64, user *models.User) error {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return err
	}

	comment, err := s.engagementRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.MaterialID != materialID {
		return apperrors.ErrCommentNotFound
	}
	if comment.UserID != user.ID && !user.RoleType.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	return s.engagementRepo.DeleteComment(ctx, commentID)
}

// UpdateProgress records the caller's progress on a material
func (s *EngagementService) UpdateProgress(ctx context.Context, materialID int64, user *models.User, progress int) (*models.MaterialProgress, error) {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return nil, err
	}
	return s.engagementRepo.UpsertProgress(ctx, user.ID, materialID, progress)
}

// GetProgress returns the caller's progress on a material, zeroed when no
// progress has been reported.
func (s *EngagementService) GetProgress(ctx context.Context, materialID int64, user *models.User) (*models.MaterialProgress, error) {
	if _, err := s.loadAccessible(ctx, materialID, user); err != nil {
		return nil, err
	}

	p, err := s.engagementRepo.GetProgress(ctx, user.ID, materialID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &models.MaterialProgress{UserID: user.ID, MaterialID: materialID}
	}
	return p, nil
}
