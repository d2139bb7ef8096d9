package imagestudio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Image is a record kept in the result batch and in the gallery.
// Src is a data URI or URL; Alt is the caption, usually the prompt.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// GeneratedImage represents a single generated image result.
type GeneratedImage struct {
	// Data contains the raw image bytes
	Data []byte

	// MIMEType of the generated image
	MIMEType string

	// Index is the position in a multi-image result (0-indexed)
	Index int

	// RevisedPrompt is the prompt after any model modifications
	RevisedPrompt string
}

// DataURI encodes the image as a data: URI.
func (g GeneratedImage) DataURI() string {
	mime := g.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(g.Data)
}

// GenerateResult holds the complete result of one backend call.
type GenerateResult struct {
	// Images contains all generated images
	Images []GeneratedImage

	// Text contains any text response from the model
	Text string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
	ImageCount       int
}

var (
	// ErrNotDataURI is returned when an image source is not an inline data
	// URI, for example a remote URL.
	ErrNotDataURI = errors.New("image source is not a data URI")

	// ErrCorruptDataURI is returned for a data URI whose header or base64
	// payload cannot be decoded.
	ErrCorruptDataURI = errors.New("corrupt image data URI")
)

// ParseDataURI decodes a "data:<mime>;base64,<payload>" source back into
// an InputImage.
func ParseDataURI(src string) (InputImage, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return InputImage{}, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return InputImage{}, fmt.Errorf("%w: missing payload", ErrCorruptDataURI)
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return InputImage{}, fmt.Errorf("%w: payload is not base64", ErrCorruptDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return InputImage{}, fmt.Errorf("%w: %w", ErrCorruptDataURI, err)
	}
	if mime == "" {
		mime = "image/png"
	}
	return InputImage{Data: data, MIMEType: mime}, nil
}
