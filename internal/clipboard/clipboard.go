// Package clipboard reads reference images from and copies prompts to the
// system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"

	"github.com/mhpenta/imagestudio"
)

// System is the OS clipboard. The zero value is not usable; call New.
type System struct {
	logger *slog.Logger

	once    sync.Once
	initErr error
}

// New returns a System that initializes the clipboard on first use.
func New(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{logger: logger}
}

func (s *System) init() error {
	s.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			s.initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
			s.logger.Warn("clipboard unavailable", "error", err.Error())
		}
	})
	return s.initErr
}

// ReadImage returns the clipboard image re-encoded as PNG, or nil when the
// clipboard holds no image.
func (s *System) ReadImage() (*imagestudio.InputImage, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	raw := clipboard.Read(clipboard.FmtImage)
	if len(raw) == 0 {
		s.logger.Debug("no image on clipboard")
		return nil, nil
	}

	img, err := DecodePNG(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("read clipboard image", "bytes", len(img.Data))
	return img, nil
}

// WriteText puts text on the clipboard.
func (s *System) WriteText(text string) error {
	if err := s.init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// DecodePNG decodes raw image bytes and re-encodes them as PNG.
func DecodePNG(raw []byte) (*imagestudio.InputImage, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode clipboard image: %w", err)
	}
	if format == "png" {
		return &imagestudio.InputImage{Data: raw, MIMEType: "image/png"}, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return &imagestudio.InputImage{Data: buf.Bytes(), MIMEType: "image/png"}, nil
}
