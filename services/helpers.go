package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// populateAvatarURL fills the public avatar URL and strips the password hash.
func populateAvatarURL(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*user.AvatarKey); url != "" {
			user.AvatarURL = &url
		}
	}
}

// extensionFromContentType допускает только растровые изображения.
func extensionFromContentType(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
}
