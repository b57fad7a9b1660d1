package dto

import (
	"time"

	"github.com/halit/learnsphere/internal/app/models"
)

// CreateMaterialRequest represents material creation. File-backed types
// (VIDEO, DOCUMENT) carry a multipart upload; YOUTUBE carries a URL.
type CreateMaterialRequest struct {
	Title       string  `form:"title" binding:"required,max=255"`
	Description string  `form:"description" binding:"max=2000"`
	Type        string  `form:"type" binding:"required,oneof=VIDEO DOCUMENT YOUTUBE"`
	Level       int     `form:"level" binding:"required,gte=1,lte=4"`
	Difficulty  *string `form:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Tags        *string `form:"tags"` // comma separated
	Pages       *int    `form:"pages" binding:"omitempty,gte=1"`
	Author      *string `form:"author" binding:"omitempty,max=255"`
	YoutubeURL  *string `form:"youtubeUrl" binding:"omitempty,url"`
}

// UpdateMaterialRequest represents a material update. A type change
// replaces the content representation wholesale.
type UpdateMaterialRequest struct {
	Title       *string `form:"title" binding:"omitempty,max=255"`
	Description *string `form:"description" binding:"omitempty,max=2000"`
	Type        *string `form:"type" binding:"omitempty,oneof=VIDEO DOCUMENT YOUTUBE"`
	Level       *int    `form:"level" binding:"omitempty,gte=1,lte=4"`
	Difficulty  *string `form:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Tags        *string `form:"tags"`
	Pages       *int    `form:"pages" binding:"omitempty,gte=1"`
	Author      *string `form:"author" binding:"omitempty,max=255"`
	YoutubeURL  *string `form:"youtubeUrl" binding:"omitempty,url"`
}

// MaterialFilter carries list query parameters
type MaterialFilter struct {
	Type       *models.MaterialType
	Level      *int
	Difficulty *string
	Search     string
	Page       int
	Size       int
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID            int64               `json:"id"`
	DepartmentID  int64               `json:"departmentId"`
	CreatedBy     int64               `json:"createdBy"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	Type          models.MaterialType `json:"type"`
	IsPublished   bool                `json:"isPublished"`
	Level         int                 `json:"level"`
	Difficulty    *string             `json:"difficulty,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
	Pages         *int                `json:"pages,omitempty"`
	Author        *string             `json:"author,omitempty"`
	ViewsCount    int64               `json:"viewsCount"`
	DownloadCount int64               `json:"downloadCount"`
	FileName      string              `json:"fileName,omitempty"`
	FileSize      int64               `json:"fileSize,omitempty"`
	YoutubeID     string              `json:"youtubeId,omitempty"`
	YoutubeURL    string              `json:"youtubeUrl,omitempty"`
	ThumbnailURL  string              `json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// MaterialDetailResponse is the single-material shape; it carries the
// caller's like state on top of the list fields.
type MaterialDetailResponse struct {
	MaterialResponse
	LikesCount int64 `json:"likesCount"`
	Liked      bool  `json:"liked"`
}

// NewMaterialDetailResponse maps a material plus the caller's like info
func NewMaterialDetailResponse(m *models.Material, likesCount int64, liked bool) MaterialDetailResponse {
	return MaterialDetailResponse{
		MaterialResponse: NewMaterialResponse(m),
		LikesCount:       likesCount,
		Liked:            liked,
	}
}

// NewMaterialResponse maps a material model to its response shape. The
// stored file path stays server side; only display fields are exposed.
func NewMaterialResponse(m *models.Material) MaterialResponse {
	resp := MaterialResponse{
		ID:            m.ID,
		DepartmentID:  m.DepartmentID,
		CreatedBy:     m.CreatedBy,
		Title:         m.Title,
		Description:   m.Description,
		Type:          m.Source.Type,
		IsPublished:   m.IsPublished,
		Level:         m.Level,
		Difficulty:    m.Difficulty,
		Tags:          m.Tags,
		Pages:         m.Pages,
		Author:        m.Author,
		ViewsCount:    m.ViewsCount,
		DownloadCount: m.DownloadCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if f := m.Source.File; f != nil {
		resp.FileName = f.Name
		resp.FileSize = f.Size
	}
	if y := m.Source.YouTube; y != nil {
		resp.YoutubeID = y.VideoID
		resp.YoutubeURL = y.URL
		resp.ThumbnailURL = y.ThumbnailURL
	}

	return resp
}

// CreateCommentRequest represents a comment submission
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=1000"`
}

// UpdateProgressRequest represents a progress upsert
type UpdateProgressRequest struct {
	Progress int `json:"progress" binding:"gte=0,lte=100"`
}

// LikeResponse reports the resulting like state after a toggle
type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// ProgressResponse represents per-user progress on a material
type ProgressResponse struct {
	MaterialID int64 `json:"materialId"`
	Progress   int   `json:"progress"`
	Completed  bool  `json:"completed"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"materialId"`
	UserID     int64     `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}
