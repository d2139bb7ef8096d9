package imagestudio

import "context"

// ImageGenerator is the core interface for image generation backends.
// Implement this interface to add support for new models or providers.
//
// The first model returned by Models() is considered the default model.
type ImageGenerator interface {
	// Generate performs exactly one backend call for a text prompt.
	// A response that carries no image is not an error: the result simply
	// has no Images, and the caller decides what an empty call means.
	Generate(ctx context.Context, prompt string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Edit modifies an existing image based on a text instruction.
	Edit(ctx context.Context, image InputImage, instruction string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Models returns the model definitions supported by this provider.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the generator.
	Close() error
}

// PromptAdvisor is implemented by providers that can also answer the text
// questions around image generation: prompt ideas and style matching.
type PromptAdvisor interface {
	// SuggestPrompts returns the raw suggestion list for the request.
	SuggestPrompts(ctx context.Context, req SuggestionRequest) ([]string, error)

	// ClassifyStyle returns the id of the preset that best matches prompt.
	ClassifyStyle(ctx context.Context, prompt string, styles []StyleOption) (StyleID, error)
}

// SuggestionRequest carries the inputs of an ideation call.
type SuggestionRequest struct {
	// Description is the user's idea; may be empty.
	Description string

	// Reference is an optional inspiration image.
	Reference *InputImage
}
