package imagestudio

import (
	"time"
)

// Model represents a specific image generation model.
type Model string

// ImageSize represents the output resolution for generated images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatioAuto AspectRatio = ""
)

// AspectRatios lists the ratios offered to users, in display order.
var AspectRatios = []AspectRatio{
	AspectRatio1x1,
	AspectRatio3x4,
	AspectRatio4x3,
	AspectRatio9x16,
	AspectRatio16x9,
}

// ParseAspectRatio returns the ratio matching s, or false if s is not one
// of the offered ratios.
func ParseAspectRatio(s string) (AspectRatio, bool) {
	for _, ar := range AspectRatios {
		if string(ar) == s {
			return ar, true
		}
	}
	return "", false
}

// GenerateConfig holds configuration options for a single backend call.
type GenerateConfig struct {
	// Model to use for generation (if empty, uses manager's default)
	Model Model

	// Size of the output image (1K, 2K); empty leaves it to the model
	Size ImageSize

	// AspectRatio of the output image
	AspectRatio AspectRatio

	// NumberOfImages requested from a batch-capable model.
	// Per-call models always produce at most one image.
	NumberOfImages int

	// ReferenceImage steers generation on models that accept one.
	ReferenceImage *InputImage

	// Metadata to attach to requests (for logging/tracking)
	Metadata map[string]string

	// WaitOnRateLimit, if true, causes the Manager to wait when rate limited.
	// If false, a RateLimitError is returned immediately.
	WaitOnRateLimit bool

	// MaxWaitDuration is the maximum time to wait when WaitOnRateLimit is true.
	// Zero means no limit.
	MaxWaitDuration time.Duration
}

// WithModel returns a copy of the config with the specified model.
func (c *GenerateConfig) WithModel(model Model) *GenerateConfig {
	if c == nil {
		return &GenerateConfig{Model: model}
	}
	cX := *c
	cX.Model = model
	return &cX
}

// DefaultConfig returns a GenerateConfig with sensible defaults.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Model:          ModelDefault,
		AspectRatio:    AspectRatio1x1,
		NumberOfImages: 1,
	}
}

// InputImage represents an image input for editing or reference.
type InputImage struct {
	// Data is the raw image bytes
	Data []byte

	// MIMEType of the image (e.g., "image/jpeg", "image/png")
	MIMEType string
}

// String returns the size for API calls.
func (s ImageSize) String() string {
	return string(s)
}

// String returns the ratio for API calls.
func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
