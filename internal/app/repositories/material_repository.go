package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
	"github.com/halit/learnsphere/internal/pkg/helpers"
)

var materialColumns = []string{
	"id", "department_id", "created_by", "title", "description",
	"material_type", "file_path", "file_name", "file_size",
	"youtube_id", "youtube_url", "thumbnail_url",
	"is_published", "level", "difficulty", "tags", "pages", "author",
	"views_count", "download_count", "created_at", "updated_at",
}

// MaterialRepository handles material database operations. The source
// union is flattened into per-variant columns here; only code inside this
// file knows about the column split.
type MaterialRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMaterialRepository creates a new MaterialRepository
func NewMaterialRepository(db *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// sourceColumns splits the union into nullable column values.
func sourceColumns(s models.MaterialSource) (filePath, fileName *string, fileSize *int64, ytID, ytURL, ytThumb *string) {
	if s.File != nil {
		filePath, fileName, fileSize = &s.File.Path, &s.File.Name, &s.File.Size
	}
	if s.YouTube != nil {
		ytID, ytURL, ytThumb = &s.YouTube.VideoID, &s.YouTube.URL, &s.YouTube.ThumbnailURL
	}
	return
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	m := &models.Material{}
	var filePath, fileName *string
	var fileSize *int64
	var ytID, ytURL, ytThumb *string

	err := row.Scan(&m.ID, &m.DepartmentID, &m.CreatedBy, &m.Title, &m.Description,
		&m.Source.Type, &filePath, &fileName, &fileSize,
		&ytID, &ytURL, &ytThumb,
		&m.IsPublished, &m.Level, &m.Difficulty, &m.Tags, &m.Pages, &m.Author,
		&m.ViewsCount, &m.DownloadCount, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	switch {
	case m.Source.Type.IsFileBacked() && filePath != nil:
		m.Source.File = &models.FileSource{Path: *filePath}
		if fileName != nil {
			m.Source.File.Name = *fileName
		}
		if fileSize != nil {
			m.Source.File.Size = *fileSize
		}
	case m.Source.Type == models.MaterialTypeYouTube && ytID != nil:
		m.Source.YouTube = &models.YouTubeSource{VideoID: *ytID}
		if ytURL != nil {
			m.Source.YouTube.URL = *ytURL
		}
		if ytThumb != nil {
			m.Source.YouTube.ThumbnailURL = *ytThumb
		}
	}

	return m, nil
}

// Create inserts a material
func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) (int64, error) {
	filePath, fileName, fileSize, ytID, ytURL, ytThumb := sourceColumns(m.Source)

	query := `INSERT INTO materials (
			department_id, created_by, title, description,
			material_type, file_path, file_name, file_size,
			youtube_id, youtube_url, thumbnail_url,
			is_published, level, difficulty, tags, pages, author,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		m.DepartmentID, m.CreatedBy, m.Title, m.Description,
		m.Source.Type, filePath, fileName, fileSize,
		ytID, ytURL, ytThumb,
		m.IsPublished, m.Level, m.Difficulty, m.Tags, m.Pages, m.Author).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating material: %w", err)
	}

	return id, nil
}

// GetByID retrieves a material by id
func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*models.Material, error) {
	sql, args, err := r.sb.Select(materialColumns...).
		From("materials").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get material query: %w", err)
	}

	m, err := scanMaterial(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("error getting material: %w", err)
	}

	return m, nil
}

// List returns materials in a department matching the filter. Passing
// publishedOnly restricts the listing to published rows; instructors and
// admins list drafts too.
func (r *MaterialRepository) List(ctx context.Context, departmentID int64, filter dto.MaterialFilter, publishedOnly bool) ([]*models.Material, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	base := squirrel.And{squirrel.Eq{"department_id": departmentID}}
	if publishedOnly {
		base = append(base, squirrel.Eq{"is_published": true})
	}
	if filter.Type != nil {
		base = append(base, squirrel.Eq{"material_type": *filter.Type})
	}
	if filter.Level != nil {
		base = append(base, squirrel.Eq{"level": *filter.Level})
	}
	if filter.Difficulty != nil {
		base = append(base, squirrel.Eq{"difficulty": *filter.Difficulty})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = append(base, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("materials").Where(base).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build material count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting materials: %w", err)
	}

	listSQL, listArgs, err := r.sb.Select(materialColumns...).
		From("materials").
		Where(base).
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build material list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing materials: %w", err)
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating materials: %w", err)
	}

	return materials, total, nil
}

// Update rewrites the mutable fields, source columns included. The whole
// source is replaced every time, so a type switch cannot leave stale
// variant columns behind.
func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) error {
	filePath, fileName, fileSize, ytID, ytURL, ytThumb := sourceColumns(m.Source)

	tag, err := r.db.Exec(ctx,
		`UPDATE materials SET
			title = $1, description = $2,
			material_type = $3, file_path = $4, file_name = $5, file_size = $6,
			youtube_id = $7, youtube_url = $8, thumbnail_url = $9,
			level = $10, difficulty = $11, tags = $12, pages = $13, author = $14,
			updated_at = NOW()
		 WHERE id = $15`,
		m.Title, m.Description,
		m.Source.Type, filePath, fileName, fileSize,
		ytID, ytURL, ytThumb,
		m.Level, m.Difficulty, m.Tags, m.Pages, m.Author,
		m.ID)
	if err != nil {
		return fmt.Errorf("error updating material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}

	return nil
}

// SetPublished toggles the publication flag
func (r *MaterialRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE materials SET is_published = $1, updated_at = NOW() WHERE id = $2`,
		published, id)
	if err != nil {
		return fmt.Errorf("error setting material publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}

// IncrementViews bumps the view counter in one statement so concurrent
// views never lose increments.
func (r *MaterialRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE materials SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing views: %w", err)
	}
	return nil
}

// IncrementDownloads bumps the download counter atomically
func (r *MaterialRepository) IncrementDownloads(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE materials SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing downloads: %w", err)
	}
	return nil
}

// Delete removes a material. Likes, comments and progress cascade.
func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM materials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}

// CountByPublished counts all materials and published materials in one pass
func (r *MaterialRepository) CountByPublished(ctx context.Context) (total, published int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_published) FROM materials`).
		Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("error counting materials: %w", err)
	}
	return total, published, nil
}
