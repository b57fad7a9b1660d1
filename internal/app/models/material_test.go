package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialSourceValidate(t *testing.T) {
	file := &FileSource{Path: "materials/abc.mp4", Name: "lecture.mp4", Size: 1024}
	yt := &YouTubeSource{VideoID: "dQw4w9WgXcQ", URL: "https://youtu.be/dQw4w9WgXcQ"}

	tests := []struct {
		name    string
		source  MaterialSource
		wantErr bool
	}{
		{"valid video", MaterialSource{Type: MaterialTypeVideo, File: file}, false},
		{"valid document", MaterialSource{Type: MaterialTypeDocument, File: file}, false},
		{"valid youtube", MaterialSource{Type: MaterialTypeYouTube, YouTube: yt}, false},
		{"unknown type", MaterialSource{Type: "PODCAST", File: file}, true},
		{"video without file", MaterialSource{Type: MaterialTypeVideo}, true},
		{"video with empty path", MaterialSource{Type: MaterialTypeVideo, File: &FileSource{}}, true},
		{"video carrying youtube", MaterialSource{Type: MaterialTypeVideo, File: file, YouTube: yt}, true},
		{"youtube without link", MaterialSource{Type: MaterialTypeYouTube}, true},
		{"youtube with empty id", MaterialSource{Type: MaterialTypeYouTube, YouTube: &YouTubeSource{}}, true},
		{"youtube carrying file", MaterialSource{Type: MaterialTypeYouTube, YouTube: yt, File: file}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFileSource(t *testing.T) {
	s, err := NewFileSource(MaterialTypeDocument, "materials/x.pdf", "notes.pdf", 42)
	require.NoError(t, err)
	assert.Equal(t, MaterialTypeDocument, s.Type)
	require.NotNil(t, s.File)
	assert.Equal(t, "materials/x.pdf", s.File.Path)
	assert.Nil(t, s.YouTube)

	_, err = NewFileSource(MaterialTypeYouTube, "materials/x.pdf", "notes.pdf", 42)
	assert.Error(t, err, "youtube is not file backed")
}

func TestNewYouTubeSource(t *testing.T) {
	s := NewYouTubeSource("dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg")
	assert.NoError(t, s.Validate())
	assert.Equal(t, MaterialTypeYouTube, s.Type)
	assert.Nil(t, s.File)
}

func TestMaterialTypeIsFileBacked(t *testing.T) {
	assert.True(t, MaterialTypeVideo.IsFileBacked())
	assert.True(t, MaterialTypeDocument.IsFileBacked())
	assert.False(t, MaterialTypeYouTube.IsFileBacked())
}
