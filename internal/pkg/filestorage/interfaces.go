package filestorage

import (
	"io"
	"mime/multipart"
)

// Storage subdirectories per upload kind.
const (
	SubdirMaterials = "materials"
	SubdirProofs    = "proofs"
)

// StoredFile describes a saved upload.
type StoredFile struct {
	Path     string // opaque path as persisted in the database
	Filename string // original filename
	Size     int64  // size in bytes
}

// FileStorage defines the interface for file storage operations.
type FileStorage interface {
	// Save stores an upload under the given subdirectory and returns its
	// stored descriptor.
	Save(fileHeader *multipart.FileHeader, subdir string) (*StoredFile, error)

	// Open returns a reader over a stored file for streaming responses.
	Open(path string) (io.ReadSeekCloser, int64, error)

	// Delete removes a file from storage. Deleting a missing file is not
	// an error.
	Delete(path string) error

	// Exists reports whether a stored path is present.
	Exists(path string) bool
}
