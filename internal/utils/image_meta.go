package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"mime"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const bytesPerMB = 1024 * 1024

// ImageMeta 描述一张图片的尺寸与格式。
type ImageMeta struct {
	Width  int
	Height int
	Format string
}

// DecodeImageMeta reads only the image header, so it is cheap on large files.
func DecodeImageMeta(data []byte) (ImageMeta, error) {
	if len(data) == 0 {
		return ImageMeta{}, errors.New("empty image payload")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageMeta{}, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return ImageMeta{}, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return ImageMeta{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// SizeInMB converts a byte count to binary megabytes rounded to two decimals.
func SizeInMB(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Round(float64(n)/bytesPerMB*100) / 100
}

// ExtensionFromFormat maps an image.DecodeConfig format name to a file extension.
func ExtensionFromFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "png":
		return "png"
	case "jpeg":
		return "jpg"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	case "bmp":
		return "bmp"
	case "tiff":
		return "tiff"
	default:
		return ""
	}
}

// ExtensionFromMime maps a Content-Type to a file extension.
func ExtensionFromMime(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	switch strings.ToLower(mimeType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	default:
		return ""
	}
}

// MimeFromExtension is the inverse of ExtensionFromMime.
func MimeFromExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return ""
	}
}

// GuessExtension prefers the decoded format and falls back to sniffing.
func GuessExtension(meta ImageMeta, data []byte) string {
	if ext := ExtensionFromFormat(meta.Format); ext != "" {
		return ext
	}
	if ext := ExtensionFromMime(http.DetectContentType(data)); ext != "" {
		return ext
	}
	return "png"
}
