package storage

import (
	"context"
	"io"
	"path"
	"strconv"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores public objects such as avatars.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// AvatarKey returns a fresh object key: avatars/<user>/<uuid><ext>.
func AvatarKey(userID int, ext string) string {
	return path.Join("avatars", strconv.Itoa(userID), uuid.NewString()+ext)
}
