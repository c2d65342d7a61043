package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp"
)

// ImageStore persists uploaded photos, scaled down to MaxWidth while
// preserving aspect ratio. Accepts JPEG, PNG and WebP; anything else is
// rejected with ErrInvalidImage. WebP is re-encoded as JPEG since the
// decoder is read-only.
type ImageStore struct {
	Dir      string
	MaxWidth int
}

func NewImageStore() *ImageStore {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return &ImageStore{Dir: dir, MaxWidth: 500}
}

// Save decodes, resizes and writes one upload, returning the stored file
// name (relative to the upload directory).
func (s *ImageStore) Save(r io.Reader) (string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	switch format {
	case "jpeg", "png", "webp":
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, format)
	}

	img := s.scale(src)

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if ext == ".png" {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *ImageStore) scale(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= s.MaxWidth {
		return src
	}

	newWidth := s.MaxWidth
	newHeight := height * newWidth / width
	if newHeight < 1 {
		newHeight = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
