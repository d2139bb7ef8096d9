// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
//
// Imagen models are served by Models.GenerateImages and return a batch per
// call. Gemini image models are served by Models.GenerateContent and return
// at most one image per call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mhpenta/imagestudio"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelImagen4 is the actual API name for Imagen 4
	APIModelImagen4 = "imagen-4.0-generate-001"

	// APIModelFlashImage is the actual API name for Gemini 2.5 Flash Image
	APIModelFlashImage = "gemini-2.5-flash-image"

	// APIModelSuggest answers prompt suggestion requests
	APIModelSuggest = "gemini-2.5-pro"

	// APIModelClassify answers style classification requests
	APIModelClassify = "gemini-2.5-flash"
)

const imagenPrefix = "imagen-"

// GeminiGenerator implements ImageGenerator and PromptAdvisor using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client

	suggestModel  string
	classifyModel string
}

// Ensure GeminiGenerator implements the interfaces.
var (
	_ imagestudio.ImageGenerator = (*GeminiGenerator)(nil)
	_ imagestudio.PromptAdvisor  = (*GeminiGenerator)(nil)
)

// New creates a new GeminiGenerator from a ProviderConfig.
func New(ctx context.Context, config *imagestudio.ProviderConfig) (*GeminiGenerator, error) {
	if config == nil {
		config = &imagestudio.ProviderConfig{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars

	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:        client,
		suggestModel:  APIModelSuggest,
		classifyModel: APIModelClassify,
	}, nil
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	return New(ctx, &imagestudio.ProviderConfig{
		Provider: imagestudio.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// Generate performs one generation call for a text prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	if err := imagestudio.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	if config == nil {
		config = imagestudio.DefaultConfig()
	}

	modelName := g.resolveModel(config)

	if strings.HasPrefix(modelName, imagenPrefix) {
		return g.generateImages(ctx, modelName, prompt, config)
	}

	parts := []*genai.Part{{Text: prompt}}
	if ref := config.ReferenceImage; ref != nil {
		parts = append([]*genai.Part{inlinePart(*ref)}, parts...)
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName,
		[]*genai.Content{{Role: "user", Parts: parts}},
		buildImageContentConfig(config))
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return parseContentResult(result), nil
}

// Edit modifies an existing image based on a text instruction.
func (g *GeminiGenerator) Edit(ctx context.Context, image imagestudio.InputImage, instruction string, config *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	if err := imagestudio.ValidateInstruction(instruction); err != nil {
		return nil, err
	}
	if err := imagestudio.ValidateInputImage(image); err != nil {
		return nil, err
	}

	if config == nil {
		config = imagestudio.DefaultConfig().WithModel(APIModelFlashImage)
	}

	modelName := g.resolveModel(config)
	if strings.HasPrefix(modelName, imagenPrefix) {
		return nil, fmt.Errorf("model %s does not support editing", modelName)
	}

	parts := []*genai.Part{
		inlinePart(image),
		{Text: instruction},
	}

	editConfig := *config
	editConfig.AspectRatio = imagestudio.AspectRatioAuto

	result, err := g.client.Models.GenerateContent(ctx, modelName,
		[]*genai.Content{{Role: "user", Parts: parts}},
		buildImageContentConfig(&editConfig))
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("edit failed: %w", err)
	}

	return parseContentResult(result), nil
}

// Models returns the model definitions supported by this provider.
// The first model (Imagen 4) is the default.
func (g *GeminiGenerator) Models() []imagestudio.ModelInfo {
	return []imagestudio.ModelInfo{
		Imagen4Info,
		FlashImageInfo,
	}
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

func (g *GeminiGenerator) generateImages(ctx context.Context, modelName, prompt string, config *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	count := config.NumberOfImages
	if count < 1 {
		count = 1
	}

	imgConfig := &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: "image/png",
	}
	if config.AspectRatio != imagestudio.AspectRatioAuto {
		imgConfig.AspectRatio = config.AspectRatio.String()
	}

	resp, err := g.client.Models.GenerateImages(ctx, modelName, prompt, imgConfig)
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return parseImagesResult(resp), nil
}

// resolveModel determines which API model name to use.
// Falls back to the first model (default) if none specified.
func (g *GeminiGenerator) resolveModel(config *imagestudio.GenerateConfig) string {
	if config != nil && config.Model != "" {
		return string(config.Model)
	}
	models := g.Models()
	if len(models) == 0 {
		return APIModelImagen4
	}
	return models[0].APIModelName
}

func inlinePart(img imagestudio.InputImage) *genai.Part {
	return &genai.Part{
		InlineData: &genai.Blob{
			Data:     img.Data,
			MIMEType: img.MIMEType,
		},
	}
}

// buildImageContentConfig converts our config to Gemini's GenerateContentConfig format.
func buildImageContentConfig(config *imagestudio.GenerateConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	if config.Size != "" || config.AspectRatio != imagestudio.AspectRatioAuto {
		genConfig.ImageConfig = &genai.ImageConfig{
			ImageSize:   config.Size.String(),
			AspectRatio: config.AspectRatio.String(),
		}
	}

	return genConfig
}

// parseContentResult extracts image parts from a GenerateContent response.
// A response without candidates or without image parts yields an empty result.
func parseContentResult(result *genai.GenerateContentResponse) *imagestudio.GenerateResult {
	genResult := &imagestudio.GenerateResult{
		Images: make([]imagestudio.GeneratedImage, 0),
	}
	if result == nil {
		return genResult
	}

	imageIndex := 0
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}

			if part.Text != "" {
				genResult.Text += part.Text
			}

			if part.InlineData != nil && len(part.InlineData.Data) > 0 &&
				strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				genResult.Images = append(genResult.Images, imagestudio.GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
					Index:    imageIndex,
				})
				imageIndex++
			}
		}
	}

	if result.UsageMetadata != nil {
		genResult.UsageMetadata = &imagestudio.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
			ImageCount:       len(genResult.Images),
		}
	}

	return genResult
}

// parseImagesResult converts a GenerateImages response. Filtered entries
// carry no bytes and are skipped.
func parseImagesResult(resp *genai.GenerateImagesResponse) *imagestudio.GenerateResult {
	genResult := &imagestudio.GenerateResult{
		Images: make([]imagestudio.GeneratedImage, 0),
	}
	if resp == nil {
		return genResult
	}

	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		genResult.Images = append(genResult.Images, imagestudio.GeneratedImage{
			Data:          gi.Image.ImageBytes,
			MIMEType:      mime,
			Index:         len(genResult.Images),
			RevisedPrompt: gi.EnhancedPrompt,
		})
	}

	genResult.UsageMetadata = &imagestudio.UsageMetadata{ImageCount: len(genResult.Images)}
	return genResult
}

// checkRateLimitError checks if an error from the Gemini API is a rate limit error.
// If so, it wraps it in a RateLimitError for standardized handling; otherwise returns the original error.
func checkRateLimitError(err error, model string) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return nil
	}

	return &imagestudio.RateLimitError{
		RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        err,
	}
}
