package models

import (
	"fmt"
	"time"
)

// FileSource holds the storage reference for uploaded material content.
type FileSource struct {
	Path string `json:"path" db:"file_path"`
	Name string `json:"name" db:"file_name"`
	Size int64  `json:"size" db:"file_size"`
}

// YouTubeSource holds the link reference for YouTube material content.
type YouTubeSource struct {
	VideoID      string `json:"videoId" db:"youtube_id"`
	URL          string `json:"url" db:"youtube_url"`
	ThumbnailURL string `json:"thumbnailUrl" db:"thumbnail_url"`
}

// MaterialSource is the tagged union of content representations. Exactly
// one variant is populated, matching Type; replacing the source replaces
// the variant wholesale, so there is no stale-field clearing to do.
type MaterialSource struct {
	Type    MaterialType   `json:"type"`
	File    *FileSource    `json:"file,omitempty"`
	YouTube *YouTubeSource `json:"youtube,omitempty"`
}

// NewFileSource builds a video or document source backed by an upload.
func NewFileSource(t MaterialType, path, name string, size int64) (MaterialSource, error) {
	if !t.IsFileBacked() {
		return MaterialSource{}, fmt.Errorf("material type %s is not file backed", t)
	}
	return MaterialSource{Type: t, File: &FileSource{Path: path, Name: name, Size: size}}, nil
}

// NewYouTubeSource builds a YouTube-link source.
func NewYouTubeSource(videoID, url, thumbnailURL string) MaterialSource {
	return MaterialSource{
		Type:    MaterialTypeYouTube,
		YouTube: &YouTubeSource{VideoID: videoID, URL: url, ThumbnailURL: thumbnailURL},
	}
}

// Validate checks the variant invariant: the populated representation must
// match the type tag and the other representation must be absent.
func (s MaterialSource) Validate() error {
	switch {
	case !s.Type.Valid():
		return fmt.Errorf("unknown material type %q", s.Type)
	case s.Type.IsFileBacked():
		if s.File == nil || s.File.Path == "" {
			return fmt.Errorf("material type %s requires an uploaded file", s.Type)
		}
		if s.YouTube != nil {
			return fmt.Errorf("material type %s cannot carry a youtube link", s.Type)
		}
	default: // MaterialTypeYouTube
		if s.YouTube == nil || s.YouTube.VideoID == "" {
			return fmt.Errorf("material type %s requires a youtube video id", s.Type)
		}
		if s.File != nil {
			return fmt.Errorf("material type %s cannot carry an uploaded file", s.Type)
		}
	}
	return nil
}

// Material represents a learning material based on the 'materials' table.
type Material struct {
	ID            int64          `json:"id" db:"id"`
	DepartmentID  int64          `json:"departmentId" db:"department_id"`
	CreatedBy     int64          `json:"createdBy" db:"created_by"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Source        MaterialSource `json:"source"` // flattened into columns at the repository boundary
	IsPublished   bool           `json:"isPublished" db:"is_published"`
	Level         int            `json:"level" db:"level"` // 1-4
	Difficulty    *string        `json:"difficulty,omitempty" db:"difficulty"`
	Tags          []string       `json:"tags,omitempty" db:"tags"`
	Pages         *int           `json:"pages,omitempty" db:"pages"`
	Author        *string        `json:"author,omitempty" db:"author"`
	ViewsCount    int64          `json:"viewsCount" db:"views_count"`
	DownloadCount int64          `json:"downloadCount" db:"download_count"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}
