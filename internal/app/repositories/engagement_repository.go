package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// EngagementRepository handles likes, comments and progress rows
type EngagementRepository struct {
	db *pgxpool.Pool
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *pgxpool.Pool) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// ToggleLike flips the like state for (user, material) and returns the new
// state plus the resulting like count. Insert-first keeps the toggle a
// single round trip per branch under concurrent taps.
func (r *EngagementRepository) ToggleLike(ctx context.Context, userID, materialID int64) (liked bool, count int64, err error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO material_likes (user_id, material_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, material_id) DO NOTHING`,
		userID, materialID)
	if err != nil {
		return false, 0, fmt.Errorf("error inserting like: %w", err)
	}

	if tag.RowsAffected() > 0 {
		liked = true
	} else {
		_, err = r.db.Exec(ctx,
			`DELETE FROM material_likes WHERE user_id = $1 AND material_id = $2`,
			userID, materialID)
		if err != nil {
			return false, 0, fmt.Errorf("error removing like: %w", err)
		}
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM material_likes WHERE material_id = $1`, materialID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("error counting likes: %w", err)
	}

	return liked, count, nil
}

// LikeCount returns the number of likes on a material
func (r *EngagementRepository) LikeCount(ctx context.Context, materialID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM material_likes WHERE material_id = $1`, materialID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting likes: %w", err)
	}
	return count, nil
}

// HasLiked reports whether the user has liked the material
func (r *EngagementRepository) HasLiked(ctx context.Context, userID, materialID int64) (bool, error) {
	var liked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM material_likes WHERE user_id = $1 AND material_id = $2)`,
		userID, materialID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("error checking like: %w", err)
	}
	return liked, nil
}

// CreateComment inserts a comment and returns it with timestamps filled
func (r *EngagementRepository) CreateComment(ctx context.Context, userID, materialID int64, body string) (*models.MaterialComment, error) {
	comment := &models.MaterialComment{UserID: userID, MaterialID: materialID, Body: body}
	err := r.db.QueryRow(ctx,
		`INSERT INTO material_comments (user_id, material_id, body, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, created_at`,
		userID, materialID, body).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	return comment, nil
}

// GetCommentByID retrieves a single comment
func (r *EngagementRepository) GetCommentByID(ctx context.Context, id int64) (*models.MaterialComment, error) {
	comment := &models.MaterialComment{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, material_id, body, created_at
		 FROM material_comments WHERE id = $1`, id).
		Scan(&comment.ID, &comment.UserID, &comment.MaterialID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error getting comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a material's comments with authors, newest first
func (r *EngagementRepository) ListComments(ctx context.Context, materialID int64) ([]*models.MaterialComment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.user_id, c.material_id, c.body, c.created_at,
		        u.first_name, u.last_name
		 FROM material_comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.material_id = $1
		 ORDER BY c.created_at DESC`, materialID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.MaterialComment
	for rows.Next() {
		c := &models.MaterialComment{User: &models.User{}}
		err := rows.Scan(&c.ID, &c.UserID, &c.MaterialID, &c.Body, &c.CreatedAt,
			&c.User.FirstName, &c.User.LastName)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		c.User.ID = c.UserID
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// DeleteComment removes a comment by id
func (r *EngagementRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM material_comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// UpsertProgress records the reported progress for (user, material).
// Completion is derived from the value, never reported by the client.
func (r *EngagementRepository) UpsertProgress(ctx context.Context, userID, materialID int64, progress int) (*models.MaterialProgress, error) {
	p := &models.MaterialProgress{
		UserID:     userID,
		MaterialID: materialID,
		Progress:   progress,
		Completed:  progress >= 100,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO material_progress (user_id, material_id, progress, completed, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, material_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			completed = EXCLUDED.completed,
			updated_at = NOW()
		 RETURNING updated_at`,
		userID, materialID, progress, p.Completed).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting progress: %w", err)
	}
	return p, nil
}

// GetProgress returns the user's progress on a material, nil when none
// has been reported yet.
func (r *EngagementRepository) GetProgress(ctx context.Context, userID, materialID int64) (*models.MaterialProgress, error) {
	p := &models.MaterialProgress{}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, material_id, progress, completed, updated_at
		 FROM material_progress WHERE user_id = $1 AND material_id = $2`,
		userID, materialID).
		Scan(&p.UserID, &p.MaterialID, &p.Progress, &p.Completed, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting progress: %w", err)
	}
	return p, nil
}
