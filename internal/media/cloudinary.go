package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
)

// CloudinaryUploader uploads illustrations straight to Cloudinary,
// bypassing the core API
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cfg config.MediaConfig) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, fileType FileType, filename string, file io.Reader) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := u.cld.Upload.Upload(uploadCtx, file, uploader.UploadParams{
		Folder: "money-pools/" + string(fileType) + "s",
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	return resp.SecureURL, nil
}
