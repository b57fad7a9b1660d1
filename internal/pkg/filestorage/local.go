package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/halit/learnsphere/internal/pkg/logger"
)

// LocalStorage stores files on the local filesystem under a base path.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Save stores an upload under subdir with a collision-free name.
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, subdir string) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := ls.basePath
	if subdir != "" {
		fullDirPath = filepath.Join(ls.basePath, subdir)
		if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	ext := filepath.Ext(fileHeader.Filename)
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	storedPath := uniqueFilename
	if subdir != "" {
		storedPath = subdir + "/" + uniqueFilename
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", storedPath).
		Int64("size", written).
		Msg("File saved")

	return &StoredFile{
		Path:     storedPath,
		Filename: fileHeader.Filename,
		Size:     written,
	}, nil
}

// Open returns a reader and size for a stored path.
func (ls *LocalStorage) Open(path string) (io.ReadSeekCloser, int64, error) {
	full, err := ls.resolve(path)
	if err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat stored file: %w", err)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, info.Size(), nil
}

// Delete removes a stored file; a missing file is not an error.
func (ls *LocalStorage) Delete(path string) error {
	if path == "" {
		return nil
	}

	full, err := ls.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}

// Exists reports whether a stored path is present.
func (ls *LocalStorage) Exists(path string) bool {
	full, err := ls.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve maps a stored path to a filesystem path, rejecting traversal out
// of the base directory.
func (ls *LocalStorage) resolve(path string) (string, error) {
	full := filepath.Join(ls.basePath, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(ls.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid stored path %q", path)
	}
	return full, nil
}
