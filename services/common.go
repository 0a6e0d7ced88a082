package services

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"paletteapi/apperrors"

	"github.com/google/uuid"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidateImage sniffs the upload and returns its MIME type. Anything that
// is not a supported image, or is larger than maxBytes, is rejected with
// apperrors.ErrValidation.
func ValidateImage(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", apperrors.ErrValidation)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", apperrors.ErrFileTooLarge, len(data), maxBytes)
	}
	mimeType := http.DetectContentType(data)
	if _, ok := imageExtensions[mimeType]; !ok {
		return "", fmt.Errorf("%w: unsupported file type %s", apperrors.ErrValidation, mimeType)
	}
	return mimeType, nil
}

// ObjectKey builds a fresh storage key such as wardrobe/12/<uuid>.jpg.
func ObjectKey(prefix string, userID uint, mimeType string) string {
	ext, ok := imageExtensions[mimeType]
	if !ok {
		ext = ".bin"
	}
	return path.Join(prefix, fmt.Sprint(userID), uuid.NewString()+ext)
}

func StrPointer(str string) *string {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	return &str
}
