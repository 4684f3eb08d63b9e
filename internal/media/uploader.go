// Package media uploads pool illustrations and returns hosted URLs.
package media

import (
	"context"
	"fmt"
	"io"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
)

// FileType illustration kind
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// ParseFileType validates an illustration kind coming from a request
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypeImage, FileTypeVideo:
		return FileType(s), nil
	}
	return "", fmt.Errorf("file_type must be image or video, got %q", s)
}

// Uploader stores one illustration and returns its hosted URL
type Uploader interface {
	Upload(ctx context.Context, fileType FileType, filename string, file io.Reader) (string, error)
}

// BackendUploader forwards the upload to the core API's
// upload-illustration endpoint
type BackendUploader struct {
	client *backend.Client
}

func NewBackendUploader(client *backend.Client) *BackendUploader {
	return &BackendUploader{client: client}
}

func (u *BackendUploader) Upload(ctx context.Context, fileType FileType, filename string, file io.Reader) (string, error) {
	return u.client.UploadIllustration(ctx, string(fileType), filename, file, "")
}
