package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding
	"io"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	MaxPhotoSize = 5 << 20
	// MaxPhotoDimension is the longest edge kept for stored photos
	MaxPhotoDimension = 1600
)

var (
	ErrInvalidFileType = errors.New("only image files are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the 5MB limit")
	ErrEmptyFile       = errors.New("file is empty")
)

// Photo is a stored upload.
type Photo struct {
	Path string `json:"path"`
	URL  string `json:"photo_url"`
}

type FileService interface {
	// UploadPhoto stores a worker photo, downscaling large images, and returns its public URL
	UploadPhoto(ctx context.Context, file io.Reader, filename string, contentType string) (Photo, error)

	DeleteFile(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadPhoto implements FileService.
func (s *fileServiceImpl) UploadPhoto(ctx context.Context, file io.Reader, filename string, contentType string) (Photo, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return Photo{}, ErrInvalidFileType
	}

	buffer, err := io.ReadAll(io.LimitReader(file, MaxPhotoSize+1))
	if err != nil {
		return Photo{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(buffer) == 0 {
		return Photo{}, ErrEmptyFile
	}
	if len(buffer) > MaxPhotoSize {
		return Photo{}, ErrFileTooLarge
	}

	ext := strings.ToLower(path.Ext(filename))
	body, err := downscaleImage(buffer, MaxPhotoDimension)
	switch {
	case err == nil && body != nil:
		// Re-encoded photos are always JPEG
		ext, contentType, buffer = ".jpg", "image/jpeg", body
	case errors.Is(err, image.ErrFormat):
		// Formats without a registered decoder are stored untouched
	case err != nil:
		return Photo{}, fmt.Errorf("failed to process image: %w", err)
	}
	if ext == "" {
		ext = ".img"
	}

	// photos/{YYYY-MM}/{uuid}{ext}
	key := path.Join("photos", time.Now().UTC().Format("2006-01"), uuid.New().String()+ext)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(buffer), key, contentType)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to upload photo: %w", err)
	}

	url, err := s.storage.GetURL(ctx, uploadedPath, 0)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to resolve photo url: %w", err)
	}

	return Photo{Path: uploadedPath, URL: url}, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// ==================== HELPER FUNCTIONS ====================

// downscaleImage returns a JPEG no larger than maxDim on its longest edge,
// or nil when the image already fits.
func downscaleImage(buffer []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return nil, nil
	}

	if width >= height {
		height = height * maxDim / width
		width = maxDim
	} else {
		width = width * maxDim / height
		height = maxDim
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resizeImage(img, width, height), &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
