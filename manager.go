package imagestudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mhpenta/imagestudio/ratelimiter"
)

const (
	ModelImagen4    Model = "imagen-4"           // Imagen 4, batch output
	ModelFlashImage Model = "gemini-flash-image" // Gemini 2.5 Flash Image, one image per call

	ModelDefault Model = ModelImagen4
)

var (
	// ErrModelNotRegistered is returned when a model has no registered provider.
	ErrModelNotRegistered = errors.New("model not registered")

	// ErrProviderNotConfigured is returned when a provider lacks required config.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Provider represents a model provider/backend.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
)

// ProviderConfig configures a specific provider.
type ProviderConfig struct {
	// Provider type
	Provider Provider

	// APIKey for authentication
	APIKey string

	// BaseURL for custom endpoints (optional)
	BaseURL string
}

// ModelMapping maps a model identifier to its provider and actual model name.
type ModelMapping struct {
	Provider        Provider
	ActualModelName string
}

// Manager routes requests to the provider registered for each model and is
// the single boundary where backend failures become GenerationErrors.
type Manager struct {
	// Model to provider mapping
	modelMappings map[Model]ModelMapping

	// Provider instances
	providers map[Provider]ImageGenerator

	// advisor answers suggestion and style questions (optional)
	advisor PromptAdvisor

	// Default model to use when the request names none
	defaultModel Model

	// Rate limiting (per model)
	rateLimiters ratelimiter.RateLimiterRegistry

	// Model info (per model)
	modelInfo map[Model]*ModelInfo

	logger *slog.Logger

	// Storage for downloads and exports (optional)
	storage Storage

	tokenEstimator TokenEstimator

	// rateLimitWait is how long a call may wait for the local limiter.
	// Zero fails fast with a RateLimitError.
	rateLimitWait time.Duration

	mu sync.RWMutex
}

var _ ImageGenerator = (*Manager)(nil)

// New creates a new Manager.
func New() *Manager {
	return &Manager{
		logger:         slog.Default(),
		modelMappings:  make(map[Model]ModelMapping),
		providers:      make(map[Provider]ImageGenerator),
		rateLimiters:   ratelimiter.NewRateLimiterRegistry(),
		modelInfo:      make(map[Model]*ModelInfo),
		tokenEstimator: NewSimpleTokenEstimator(),
		defaultModel:   ModelDefault,
	}
}

// RegisterModel registers a model with full info (including rate limits).
// Uses the default in-memory rate limiter. Use SetRateLimiter to override with a custom implementation.
func (m *Manager) RegisterModel(model Model, mapping ModelMapping, info *ModelInfo) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modelMappings[model] = mapping
	m.modelInfo[model] = info

	if info.RateLimits.TokensPerMinute > 0 || info.RateLimits.RequestsPerMinute > 0 {
		m.rateLimiters.Set(string(model), ratelimiter.NewFromLimits(&ratelimiter.RateLimits{
			TokensPerMinute:   info.RateLimits.TokensPerMinute,
			RequestsPerMinute: info.RateLimits.RequestsPerMinute,
			TokensPerDay:      info.RateLimits.TokensPerDay,
		}))
	}

	return m
}

// SetRateLimiter sets a custom rate limiter for a model.
func (m *Manager) SetRateLimiter(model Model, limiter ratelimiter.Limiter) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rateLimiters.Set(string(model), limiter)
	return m
}

// SetDefaultModel sets the default model used when a request names none.
func (m *Manager) SetDefaultModel(model Model) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaultModel = model
	return m
}

// SetLogger sets a structured logger for the manager.
func (m *Manager) SetLogger(logger *slog.Logger) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger = logger
	return m
}

// SetAdvisor sets the backend used for prompt suggestions and style matching.
func (m *Manager) SetAdvisor(advisor PromptAdvisor) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.advisor = advisor
	return m
}

// SetStorage sets a storage backend for downloads and exports.
func (m *Manager) SetStorage(storage Storage) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.storage = storage
	return m
}

// Storage returns the configured storage backend, or nil if not set.
func (m *Manager) Storage() Storage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.storage
}

// Synthesize turns a user request into images.
//
// Batch-capable models get a single call asking for NumberOfImages. Other
// models are called NumberOfImages times, one after another, and every call
// that produced an image contributes to the result. The request fails only
// when no call produced anything. A backend error stops the loop; there is
// no automatic retry. When the local rate limiter refuses a later call the
// images already produced are returned.
func (m *Manager) Synthesize(ctx context.Context, req Request) ([]Image, error) {
	if err := ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}

	count := req.NumberOfImages
	if count == 0 {
		count = 1
	}
	if err := ValidateImageCount(count); err != nil {
		return nil, err
	}

	model := m.resolveModel(&GenerateConfig{Model: req.Model})
	info, ok := m.GetModelInfo(model)
	if !ok {
		return nil, &GenerationError{Op: OpGenerateImage, Err: fmt.Errorf("%w: %s", ErrModelNotRegistered, model)}
	}
	if !info.SupportsAspectRatio(req.AspectRatio) {
		return nil, fmt.Errorf("%w: %s for %s", ErrUnsupportedAspectRatio, req.AspectRatio, model)
	}
	if limit := info.Capabilities.MaxOutputImages; limit > 0 && count > limit {
		count = limit
	}

	if info.Capabilities.SupportsBatchOutput {
		return m.synthesizeBatch(ctx, model, req, count)
	}
	return m.synthesizeSequential(ctx, model, info, req, count)
}

func (m *Manager) synthesizeBatch(ctx context.Context, model Model, req Request, count int) ([]Image, error) {
	config := &GenerateConfig{
		Model:           model,
		AspectRatio:     req.AspectRatio,
		NumberOfImages:  count,
		WaitOnRateLimit: m.rateLimitWait > 0,
		MaxWaitDuration: m.rateLimitWait,
	}

	result, err := m.Generate(ctx, ComposeBatchPrompt(req), config)
	if err != nil {
		return nil, &GenerationError{Op: OpGenerateImage, Err: err}
	}

	images := make([]Image, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, Image{Src: img.DataURI(), Alt: req.Prompt})
	}
	if len(images) == 0 {
		return nil, &GenerationError{Op: OpGenerateImage, Err: ErrNoImageProduced}
	}
	return images, nil
}

func (m *Manager) synthesizeSequential(ctx context.Context, model Model, info *ModelInfo, req Request, count int) ([]Image, error) {
	config := &GenerateConfig{
		Model:           model,
		AspectRatio:     req.AspectRatio,
		NumberOfImages:  1,
		WaitOnRateLimit: m.rateLimitWait > 0,
		MaxWaitDuration: m.rateLimitWait,
	}
	if req.Reference != nil && info.Capabilities.SupportsReferenceImage {
		if err := ValidateInputImage(*req.Reference); err != nil {
			return nil, err
		}
		config.ReferenceImage = req.Reference
	}

	prompt := ComposePerCallPrompt(req)
	images := make([]Image, 0, count)

	for i := 0; i < count; i++ {
		result, err := m.Generate(ctx, prompt, config)
		if err != nil && len(images) > 0 && isLocalRateLimit(err) {
			m.logger.Warn("rate limited, keeping images produced so far",
				"model", string(model),
				"produced", len(images),
				"of", count,
				"error", err.Error(),
			)
			break
		}
		if err != nil {
			return nil, &GenerationError{Op: OpGenerateImage, Err: err}
		}
		if len(result.Images) == 0 {
			m.logger.Debug("call produced no image",
				"model", string(model),
				"attempt", i+1,
				"of", count,
			)
			continue
		}
		images = append(images, Image{Src: result.Images[0].DataURI(), Alt: req.Prompt})
	}

	if len(images) == 0 {
		return nil, &GenerationError{Op: OpGenerateImage, Err: ErrNoImageProduced}
	}
	if len(images) < count {
		m.logger.Info("partial generation",
			"model", string(model),
			"requested", count,
			"produced", len(images),
		)
	}
	return images, nil
}

// EditImage applies instruction to source and returns the single edited image.
func (m *Manager) EditImage(ctx context.Context, instruction string, source InputImage, faceless bool) (Image, error) {
	if err := ValidateInstruction(instruction); err != nil {
		return Image{}, err
	}
	if err := ValidateInputImage(source); err != nil {
		return Image{}, err
	}

	config := &GenerateConfig{Model: ModelFlashImage}
	result, err := m.Edit(ctx, source, ComposeEditInstruction(instruction, faceless), config)
	if err != nil {
		return Image{}, &GenerationError{Op: OpEditImage, Err: err}
	}
	if len(result.Images) == 0 {
		return Image{}, &GenerationError{Op: OpEditImage, Err: ErrNoImageProduced}
	}

	return Image{Src: result.Images[0].DataURI(), Alt: "Edited image: " + instruction}, nil
}

// SuggestPrompts asks the advisor for prompt ideas.
func (m *Manager) SuggestPrompts(ctx context.Context, req SuggestionRequest) ([]string, error) {
	m.mu.RLock()
	advisor := m.advisor
	m.mu.RUnlock()

	if advisor == nil {
		return nil, &GenerationError{Op: OpSuggestPrompts, Err: ErrAdvisorNotConfigured}
	}
	if req.Reference != nil {
		if err := ValidateInputImage(*req.Reference); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	suggestions, err := advisor.SuggestPrompts(ctx, req)
	if err != nil {
		m.logger.Error("prompt suggestions failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, &GenerationError{Op: OpSuggestPrompts, Err: err}
	}
	if len(suggestions) == 0 {
		return nil, &GenerationError{Op: OpSuggestPrompts, Err: ErrMalformedResponse}
	}

	m.logger.Info("prompt suggestions completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"count", len(suggestions),
		"with_reference", req.Reference != nil,
	)
	return suggestions, nil
}

// ClassifyStyle picks the preset that best matches prompt. It is a hint only:
// any failure, or an id that is not a known preset, reports false.
func (m *Manager) ClassifyStyle(ctx context.Context, prompt string) (StyleID, bool) {
	m.mu.RLock()
	advisor := m.advisor
	m.mu.RUnlock()

	if advisor == nil {
		return "", false
	}

	id, err := advisor.ClassifyStyle(ctx, prompt, StyleOptions)
	if err != nil {
		m.logger.Warn("style classification failed", "error", err.Error())
		return "", false
	}
	if _, ok := LookupStyle(id); !ok {
		m.logger.Debug("style classification returned unknown id", "style_id", string(id))
		return "", false
	}
	return id, true
}

// Generate performs one backend call for the configured model.
func (m *Manager) Generate(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error) {
	if config == nil {
		config = DefaultConfig()
	}

	model := m.resolveModel(config)
	start := time.Now()

	m.logger.Debug("starting image generation",
		"model", string(model),
		"prompt_length", len(prompt),
		"number_of_images", config.NumberOfImages,
		"has_reference", config.ReferenceImage != nil,
	)

	if err := m.checkRateLimit(ctx, model, config, prompt, config.ReferenceImage); err != nil {
		m.logger.Warn("rate limit hit",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	gen, actualConfig, err := m.getGeneratorForConfig(config)
	if err != nil {
		m.logger.Error("failed to get generator",
			"model", string(model),
			"error", err.Error(),
		)

		return nil, err
	}

	result, err := gen.Generate(ctx, prompt, actualConfig)
	duration := time.Since(start)

	if err != nil {
		m.logger.Error("generation failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)

		return nil, err
	}

	logAttrs := []any{
		"model", string(model),
		"duration_ms", duration.Milliseconds(),
		"image_count", len(result.Images),
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", result.UsageMetadata.PromptTokens,
			"response_tokens", result.UsageMetadata.CandidatesTokens,
			"total_tokens", result.UsageMetadata.TotalTokens,
		)
	}
	m.logger.Info("generation completed", logAttrs...)

	return result, nil
}

// Edit modifies an existing image based on a text instruction.
func (m *Manager) Edit(ctx context.Context, image InputImage, instruction string, config *GenerateConfig) (*GenerateResult, error) {
	if config == nil {
		config = DefaultConfig().WithModel(ModelFlashImage)
	}

	model := m.resolveModel(config)
	start := time.Now()

	m.logger.Debug("starting image edit",
		"model", string(model),
		"instruction_length", len(instruction),
		"image_size", len(image.Data),
	)

	if err := m.checkRateLimit(ctx, model, config, instruction, &image); err != nil {
		m.logger.Warn("rate limit hit for edit",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	gen, actualConfig, err := m.getGeneratorForConfig(config)
	if err != nil {
		m.logger.Error("failed to get generator for edit",
			"model", string(model),
			"error", err.Error(),
		)

		return nil, err
	}

	result, err := gen.Edit(ctx, image, instruction, actualConfig)
	duration := time.Since(start)

	if err != nil {
		m.logger.Error("edit failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)

		return nil, err
	}

	m.logger.Info("edit completed",
		"model", string(model),
		"duration_ms", duration.Milliseconds(),
		"image_count", len(result.Images),
	)

	return result, nil
}

// Models returns all registered model definitions.
func (m *Manager) Models() []ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	models := make([]ModelInfo, 0, len(m.modelInfo))
	for _, info := range m.modelInfo {
		models = append(models, *info)
	}
	return models
}

// Close releases all provider resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for provider, gen := range m.providers {
		if err := gen.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", provider, err))
		}
	}
	m.providers = make(map[Provider]ImageGenerator)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GetModelInfo returns model information for a specific model.
func (m *Manager) GetModelInfo(model Model) (*ModelInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.modelInfo[model]
	return info, ok
}

// checkRateLimit checks rate limits for a model and optionally waits.
func (m *Manager) checkRateLimit(ctx context.Context, model Model, config *GenerateConfig, prompt string, image *InputImage) error {

	const (
		tokenBuffer = 100
	)

	limiter, ok := m.rateLimiters.Lookup(string(model))
	if !ok {
		return nil
	}

	estimatedTokens := EstimateRequestTokens(m.tokenEstimator, prompt, image)

	estimatedTokens += tokenBuffer

	if config.WaitOnRateLimit {
		err := limiter.WaitAndConsume(ctx, estimatedTokens, config.MaxWaitDuration)
		if err == nil || ctx.Err() != nil {
			return err
		}
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  limitType(limiter, estimatedTokens),
			Model:      string(model),
			Local:      true,
			Err:        err,
		}
	}

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  limitType(limiter, estimatedTokens),
			Model:      string(model),
			Local:      true,
		}
	}

	return nil
}

// limitType names the bucket that refused tokens, when the limiter can tell.
func limitType(limiter ratelimiter.Limiter, tokens int) string {
	if b, ok := limiter.(interface{ Binding(tokens int) string }); ok {
		if t := b.Binding(tokens); t != "" {
			return t
		}
	}
	return "rate"
}

// resolveModel determines the actual model to use.
func (m *Manager) resolveModel(config *GenerateConfig) Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if config != nil && config.Model != "" {
		return config.Model
	}
	return m.defaultModel
}

// getGeneratorForConfig returns the appropriate generator and adjusted config.
func (m *Manager) getGeneratorForConfig(config *GenerateConfig) (ImageGenerator, *GenerateConfig, error) {
	model := m.resolveModel(config)

	m.mu.RLock()
	mapping, ok := m.modelMappings[model]
	m.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrModelNotRegistered, model)
	}

	gen, err := m.getProvider(mapping.Provider)
	if err != nil {
		return nil, nil, err
	}

	actualConfig := config
	if actualConfig == nil {
		actualConfig = DefaultConfig()
	}
	configCopy := *actualConfig
	configCopy.Model = Model(mapping.ActualModelName)

	return gen, &configCopy, nil
}

// getProvider returns the provider instance for the given provider type.
func (m *Manager) getProvider(provider Provider) (ImageGenerator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gen, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	return gen, nil
}
