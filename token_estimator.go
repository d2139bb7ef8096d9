package imagestudio

import (
	"math"
)

// TokenEstimator provides configurable token estimation strategies
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator - fast approximation of prompt token usage for rate limiting
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

// EstimateTokens assumes roughly four characters per token. Composed image
// prompts are mostly English fragments, which keeps this close enough.
func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	charCount := len([]rune(text))
	tokenEstimate := float64(charCount) / 4.0
	tokenEstimate *= e.SafetyMargin

	return int(math.Ceil(tokenEstimate)) + 3
}

// imageTokens is the flat cost charged for an attached image.
const imageTokens = 258

// EstimateRequestTokens estimates the prompt cost of one call, including an
// attached reference image.
func EstimateRequestTokens(e TokenEstimator, prompt string, reference *InputImage) int {
	n := e.EstimateTokens(prompt)
	if reference != nil {
		n += imageTokens
	}
	return n
}
