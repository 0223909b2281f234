package service

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
)

// ImageService validates and uploads images through the object storage
// collaborator. It returns the stored object ID alongside the public URL so
// callers can roll the upload back on downstream failure.
type ImageService struct {
	storage            storage.Storage
	maxUploadSizeBytes int64
}

type UploadImageInput struct {
	Prefix   string
	Filename string
	Content  []byte
}

func NewImageService(store storage.Storage) *ImageService {
	return &ImageService{
		storage:            store,
		maxUploadSizeBytes: int64(DefaultImageMaxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload sniffs the payload to confirm it decodes as a known image format,
// then stores it. Returns (objectID, publicURL).
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (string, string, error) {
	if len(in.Content) == 0 {
		return "", "", models.NewValidationError("Image file is empty")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", "", models.NewValidationError("Image exceeds the maximum upload size")
	}

	format, err := sniffImageFormat(in.Content)
	if err != nil {
		return "", "", models.NewValidationError("File is not a supported image format")
	}

	fileName := in.Filename
	if !strings.Contains(fileName, ".") {
		fileName = fileName + "." + format
	}

	objectID, url, err := s.storage.UploadImage(ctx, in.Prefix, fileName, bytes.NewReader(in.Content), int64(len(in.Content)))
	if err != nil {
		return "", "", models.NewInternalError(err)
	}
	return objectID, url, nil
}

// Delete removes a previously uploaded object. Used for rollback when a
// write fails after the upload succeeded.
func (s *ImageService) Delete(ctx context.Context, objectID string) error {
	if objectID == "" {
		return nil
	}
	return s.storage.DeleteImage(ctx, objectID)
}

// sniffImageFormat decodes the image header; registered decoders cover jpeg,
// png, gif and webp.
func sniffImageFormat(content []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	return format, nil
}
