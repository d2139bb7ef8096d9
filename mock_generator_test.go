package imagestudio

import (
	"context"
)

// MockImageGenerator is a mock implementation of ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error)
	EditFunc     func(ctx context.Context, image InputImage, instruction string, config *GenerateConfig) (*GenerateResult, error)
	ModelsFunc   func() []ModelInfo
	CloseFunc    func() error
}

func (m *MockImageGenerator) Generate(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, config)
	}
	return &GenerateResult{}, nil
}

func (m *MockImageGenerator) Edit(ctx context.Context, image InputImage, instruction string, config *GenerateConfig) (*GenerateResult, error) {
	if m.EditFunc != nil {
		return m.EditFunc(ctx, image, instruction, config)
	}
	return &GenerateResult{}, nil
}

func (m *MockImageGenerator) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{}
}

func (m *MockImageGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockPromptAdvisor is a mock implementation of PromptAdvisor.
type MockPromptAdvisor struct {
	SuggestPromptsFunc func(ctx context.Context, req SuggestionRequest) ([]string, error)
	ClassifyStyleFunc  func(ctx context.Context, prompt string, styles []StyleOption) (StyleID, error)
}

func (m *MockPromptAdvisor) SuggestPrompts(ctx context.Context, req SuggestionRequest) ([]string, error) {
	if m.SuggestPromptsFunc != nil {
		return m.SuggestPromptsFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockPromptAdvisor) ClassifyStyle(ctx context.Context, prompt string, styles []StyleOption) (StyleID, error) {
	if m.ClassifyStyleFunc != nil {
		return m.ClassifyStyleFunc(ctx, prompt, styles)
	}
	return "", nil
}

// testModels mirrors the two production models without rate limits.
func testModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:         string(ModelImagen4),
			Provider:     ProviderGeminiAPI,
			APIModelName: "imagen-api",
			Capabilities: ModelCapabilities{
				SupportsTextToImage: true,
				SupportsBatchOutput: true,
				MaxOutputImages:     4,
			},
		},
		{
			Name:         string(ModelFlashImage),
			Provider:     ProviderGeminiAPI,
			APIModelName: "flash-api",
			Capabilities: ModelCapabilities{
				SupportsTextToImage:    true,
				SupportsImageEditing:   true,
				SupportsReferenceImage: true,
				MaxOutputImages:        MaxImagesPerRequest,
			},
		},
	}
}

func pngResult(b byte) *GenerateResult {
	return &GenerateResult{
		Images: []GeneratedImage{{Data: []byte{b}, MIMEType: "image/png"}},
	}
}
