package report

import (
	"net/http"
	"path"
	"strings"

	"foodreport/internal/pkg/apperr"

	"github.com/google/uuid"
)

const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Image is an uploaded photo as received from the client.
type Image struct {
	Filename string
	Data     []byte
}

// sniffImage checks size and content and returns the detected MIME type.
func sniffImage(img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", apperr.Validation("image is required")
	}
	if len(img.Data) > MaxImageSize {
		return "", apperr.Validation("image must be at most 10MB")
	}

	head := img.Data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := strings.Split(http.DetectContentType(head), ";")[0]
	if _, ok := allowedImageTypes[mimeType]; !ok {
		return "", apperr.Validation("image must be a JPEG or PNG file")
	}
	return mimeType, nil
}

// isImageKey reports whether key has the shape of a key this service
// generates: a uuid followed by .jpg or .png.
func isImageKey(key string) bool {
	ext := path.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	if ext != ".jpg" && ext != ".png" || len(stem) != 36 {
		return false
	}
	_, err := uuid.Parse(stem)
	return err == nil
}
