package imagestudio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists image files outside the gallery record: downloads from
// the preview and gallery exports.
type Storage interface {
	// SaveFile saves data under path and returns where it ended up
	// (a file path or URL). The contentType is the image's MIME type.
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	// Location is where the image was written (path or URL)
	Location string

	// Path is the storage path/key where the image was saved
	Path string

	// Alt is the caption of the source image
	Alt string

	// MIMEType of the saved bytes
	MIMEType string

	// Size is the number of bytes saved
	Size int
}

// DirStorage writes files below a local directory.
type DirStorage struct {
	Root string
}

var _ Storage = (*DirStorage)(nil)

// NewDirStorage returns a DirStorage rooted at dir.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{Root: dir}
}

// SaveFile writes data to Root/path, creating parent directories.
func (s *DirStorage) SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.Root, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return full, nil
}

// DownloadName returns a unique file name for an image of the given MIME type,
// e.g. "permai-illustration-<uuid>.png".
func DownloadName(mime string) string {
	return "permai-illustration-" + uuid.NewString() + "." + extensionFromMIME(mime)
}

// SaveImage decodes img and writes it to storage under dir with a unique name.
func SaveImage(ctx context.Context, storage Storage, img Image, dir string) (StorageResult, error) {
	if storage == nil {
		return StorageResult{}, ErrStorageNotConfigured
	}

	decoded, err := ParseDataURI(img.Src)
	if err != nil {
		return StorageResult{}, err
	}

	path := DownloadName(decoded.MIMEType)
	if dir != "" {
		path = dir + "/" + path
	}

	location, err := storage.SaveFile(ctx, decoded.Data, path, decoded.MIMEType)
	if err != nil {
		return StorageResult{}, err
	}

	return StorageResult{
		Location: location,
		Path:     path,
		Alt:      img.Alt,
		MIMEType: decoded.MIMEType,
		Size:     len(decoded.Data),
	}, nil
}

// SaveImages saves every image to storage under dir.
// It returns the results saved before the first failure along with the error.
func SaveImages(ctx context.Context, storage Storage, images []Image, dir string) ([]StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}

	results := make([]StorageResult, 0, len(images))
	for i, img := range images {
		res, err := SaveImage(ctx, storage, img, dir)
		if err != nil {
			return results, fmt.Errorf("image %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Download saves img through the manager's storage.
func (m *Manager) Download(ctx context.Context, img Image) (StorageResult, error) {
	res, err := SaveImage(ctx, m.Storage(), img, "")
	if err != nil {
		return StorageResult{}, err
	}
	m.logger.Info("image downloaded",
		"location", res.Location,
		"size", res.Size,
	)
	return res, nil
}

// ReadImageFile loads an image from disk for use as a reference or edit source.
func ReadImageFile(path string) (InputImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InputImage{}, err
	}
	img := InputImage{Data: data, MIMEType: GetMIMEType(path)}
	if err := ValidateInputImage(img); err != nil {
		return InputImage{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// GetMIMEType guesses the image MIME type from a file extension.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
