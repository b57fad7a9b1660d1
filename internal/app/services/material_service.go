package services

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/app/repositories"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/filestorage"
	"github.com/halit/learnsphere/internal/pkg/youtube"
)

// MaterialService handles material management and the access policy
type MaterialService struct {
	materialRepo   *repositories.MaterialRepository
	departmentRepo *repositories.DepartmentRepository
	fileStorage    filestorage.FileStorage
	logger         zerolog.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materialRepo *repositories.MaterialRepository,
	departmentRepo *repositories.DepartmentRepository,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo:   materialRepo,
		departmentRepo: departmentRepo,
		fileStorage:    fileStorage,
		logger:         logger,
	}
}

// authorizeRead enforces the read policy for a consuming user. Unpublished
// materials are reported as not found so their existence stays hidden;
// published materials in another department are forbidden. Managers see
// everything.
func authorizeRead(m *models.Material, role models.RoleType, departmentID int64) error {
	if role.CanManageMaterials() {
		return nil
	}
	if !m.IsPublished {
		return apperrors.ErrMaterialNotFound
	}
	if m.DepartmentID != departmentID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// List returns materials in the caller's department. Students only see
// published rows; managers also see drafts.
func (s *MaterialService) List(ctx context.Context, role models.RoleType, departmentID int64, filter dto.MaterialFilter) ([]*models.Material, int64, error) {
	publishedOnly := !role.CanManageMaterials()
	return s.materialRepo.List(ctx, departmentID, filter, publishedOnly)
}

// Get returns a single material after the read policy, counting the view
func (s *MaterialService) Get(ctx context.Context, id int64, role models.RoleType, departmentID int64) (*models.Material, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(m, role, departmentID); err != nil {
		return nil, err
	}

	// Every successful fetch counts, no per-user dedup
	if err := s.materialRepo.IncrementViews(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("materialID", id).Msg("Failed to increment view count")
	}
	m.ViewsCount++

	return m, nil
}

// Download opens the stored file of a file-backed material for streaming.
// YouTube materials have nothing to download.
func (s *MaterialService) Download(ctx context.Context, id int64, role models.RoleType, departmentID int64) (*models.Material, io.ReadSeekCloser, int64, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := authorizeRead(m, role, departmentID); err != nil {
		return nil, nil, 0, err
	}
	if m.Source.File == nil {
		return nil, nil, 0, apperrors.ErrMaterialNotDownload
	}

	reader, size, err := s.fileStorage.Open(m.Source.File.Path)
	if err != nil {
		return nil, nil, 0, err
	}

	if err := s.materialRepo.IncrementDownloads(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("materialID", id).Msg("Failed to increment download count")
	}

	return m, reader, size, nil
}

// buildSource resolves the content representation for the requested type
func (s *MaterialService) buildSource(typ models.MaterialType, upload *multipart.FileHeader, youtubeURL *string) (models.MaterialSource, error) {
	if typ == models.MaterialTypeYouTube {
		if youtubeURL == nil || *youtubeURL == "" {
			return models.MaterialSource{}, apperrors.NewBadRequestError("youtubeUrl is required for YOUTUBE materials")
		}
		videoID, err := youtube.ExtractVideoID(*youtubeURL)
		if err != nil {
			return models.MaterialSource{}, apperrors.NewBadRequestError("could not extract a video ID from the given URL")
		}
		return models.NewYouTubeSource(videoID, *youtubeURL, youtube.ThumbnailURL(videoID)), nil
	}

	if upload == nil {
		return models.MaterialSource{}, apperrors.NewBadRequestError("a file upload is required for this material type")
	}
	stored, err := s.fileStorage.Save(upload, filestorage.SubdirMaterials)
	if err != nil {
		return models.MaterialSource{}, err
	}
	return models.NewFileSource(typ, stored.Path, stored.Filename, stored.Size)
}

func parseTags(tags *string) []string {
	if tags == nil {
		return nil
	}
	var out []string
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Create adds an unpublished material in the creator's department
func (s *MaterialService) Create(ctx context.Context, creator *models.User, req *dto.CreateMaterialRequest, upload *multipart.FileHeader) (*models.Material, error) {
	typ := models.MaterialType(req.Type)
	source, err := s.buildSource(typ, upload, req.YoutubeURL)
	if err != nil {
		return nil, err
	}
	if err := source.Validate(); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	m := &models.Material{
		DepartmentID: creator.DepartmentID,
		CreatedBy:    creator.ID,
		Title:        req.Title,
		Description:  req.Description,
		Source:       source,
		IsPublished:  false,
		Level:        req.Level,
		Difficulty:   req.Difficulty,
		Tags:         parseTags(req.Tags),
		Pages:        req.Pages,
		Author:       req.Author,
	}

	id, err := s.materialRepo.Create(ctx, m)
	if err != nil {
		if source.File != nil {
			if delErr := s.fileStorage.Delete(source.File.Path); delErr != nil {
				s.logger.Error().Err(delErr).Str("path", source.File.Path).Msg("Failed to clean up material file")
			}
		}
		return nil, err
	}

	m.ID = id
	return m, nil
}

// Update modifies a material. Changing the type replaces the content
// representation wholesale; the old file, if any, is removed after the row
// update succeeds.
func (s *MaterialService) Update(ctx context.Context, id int64, req *dto.UpdateMaterialRequest, upload *multipart.FileHeader) (*models.Material, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Level != nil {
		m.Level = *req.Level
	}
	if req.Difficulty != nil {
		m.Difficulty = req.Difficulty
	}
	if req.Tags != nil {
		m.Tags = parseTags(req.Tags)
	}
	if req.Pages != nil {
		m.Pages = req.Pages
	}
	if req.Author != nil {
		m.Author = req.Author
	}

	var oldFilePath string
	newType := m.Source.Type
	if req.Type != nil {
		newType = models.MaterialType(*req.Type)
	}

	if upload != nil || req.YoutubeURL != nil || newType != m.Source.Type {
		if m.Source.File != nil {
			oldFilePath = m.Source.File.Path
		}
		source, err := s.buildSource(newType, upload, req.YoutubeURL)
		if err != nil {
			return nil, err
		}
		if err := source.Validate(); err != nil {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		m.Source = source
	}

	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	if oldFilePath != "" && (m.Source.File == nil || m.Source.File.Path != oldFilePath) {
		if delErr := s.fileStorage.Delete(oldFilePath); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", oldFilePath).Msg("Failed to remove replaced material file")
		}
	}

	return m, nil
}

// SetPublished publishes or unpublishes a material
func (s *MaterialService) SetPublished(ctx context.Context, id int64, published bool) error {
	return s.materialRepo.SetPublished(ctx, id, published)
}

// Delete removes a material and its stored file
func (s *MaterialService) Delete(ctx context.Context, id int64) error {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return err
	}

	if m.Source.File != nil {
		if delErr := s.fileStorage.Delete(m.Source.File.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", m.Source.File.Path).Msg("Failed to remove material file")
		}
	}

	return nil
}
