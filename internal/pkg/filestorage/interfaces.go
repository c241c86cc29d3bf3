package filestorage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyFile is returned when an upload carries no bytes
var ErrEmptyFile = errors.New("empty file")

// Folders used by the course and user handlers
const (
	FolderCourseImages    = "courses/images"
	FolderCourseMaterials = "courses/materials"
	FolderAssignments     = "courses/assignments"
	FolderSubmissions     = "courses/submissions"
	FolderProfilePhotos   = "users/photos"
)

// File is an uploaded binary held in memory
type File struct {
	Folder      string
	Name        string // original filename, only its extension is kept
	ContentType string
	Data        []byte
}

// FileStorage uploads a buffer to a backing store and returns a public URL
type FileStorage interface {
	Upload(ctx context.Context, file File) (string, error)
}

// objectKey builds a collision-free key under the file's folder
func objectKey(file File) string {
	ext := strings.ToLower(filepath.Ext(file.Name))
	return path.Join(file.Folder, uuid.New().String()+ext)
}
