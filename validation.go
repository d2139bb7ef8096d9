package imagestudio

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. These are input problems caught before any backend
// call and are shown to the user as-is.
var (
	ErrEmptyPrompt        = errors.New("please provide a prompt to generate images")
	ErrMissingImage       = errors.New("please upload an image to edit")
	ErrMissingInstruction = errors.New("please provide an editing instruction")
	ErrEmptyImageData     = errors.New("image data cannot be empty")
	ErrInvalidMIMEType    = errors.New("invalid or unsupported MIME type")
	ErrImageTooLarge      = errors.New("image data exceeds maximum size")
	ErrInvalidImageCount  = errors.New("number of images out of range")

	ErrUnsupportedAspectRatio = errors.New("aspect ratio not supported by the model")
)

const (
	// MaxImageSize is the maximum allowed image size in bytes (20MB)
	MaxImageSize = 20 * 1024 * 1024

	// MaxImagesPerRequest bounds NumberOfImages.
	MaxImagesPerRequest = 10
)

// ValidMIMETypes contains the supported image MIME types
var ValidMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ValidatePrompt validates a text prompt.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// ValidateInstruction validates an editing instruction.
func ValidateInstruction(instruction string) error {
	if strings.TrimSpace(instruction) == "" {
		return ErrMissingInstruction
	}
	return nil
}

// ValidateImageCount validates a requested number of images.
func ValidateImageCount(n int) error {
	if n < 1 || n > MaxImagesPerRequest {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidImageCount, n, MaxImagesPerRequest)
	}
	return nil
}

// ValidateInputImage validates an input image.
func ValidateInputImage(img InputImage) error {
	if len(img.Data) == 0 {
		return ErrEmptyImageData
	}

	if len(img.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(img.Data), MaxImageSize)
	}

	if img.MIMEType == "" {
		return fmt.Errorf("%w: MIME type is required", ErrInvalidMIMEType)
	}

	if !ValidMIMETypes[img.MIMEType] {
		return fmt.Errorf("%w: %s", ErrInvalidMIMEType, img.MIMEType)
	}

	return nil
}
