package imagestudio

// ModelCapabilities describes what features a model supports.
type ModelCapabilities struct {
	// Generation modes
	SupportsTextToImage  bool
	SupportsImageEditing bool

	// SupportsBatchOutput means one call can return several images.
	// Models without it are called once per requested image.
	SupportsBatchOutput bool

	// SupportsReferenceImage means a reference image may steer generation.
	SupportsReferenceImage bool

	// Limits
	MaxOutputImages int // Max images generated per request
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int // 0 = unlimited
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
	ImageGenerationCost    float64 // Per image (if applicable)
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	// Identity
	Name         string   // Public model name (e.g., "imagen-4")
	Label        string   // Display name
	Description  string   // One-line summary shown next to the label
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "imagen-4.0-generate-001")

	Capabilities ModelCapabilities

	SupportedAspectRatios []AspectRatio

	RateLimits RateLimits

	Pricing Pricing
}

// SupportsAspectRatio reports whether ar is accepted by the model.
// An empty list accepts everything.
func (mi ModelInfo) SupportsAspectRatio(ar AspectRatio) bool {
	if len(mi.SupportedAspectRatios) == 0 || ar == AspectRatioAuto {
		return true
	}
	for _, s := range mi.SupportedAspectRatios {
		if s == ar {
			return true
		}
	}
	return false
}

// ModelOption is the user-facing description of a selectable model.
type ModelOption struct {
	ID               Model
	Label            string
	Description      string
	AcceptsReference bool
}

// ModelOptions lists the generation models offered to users, in display order.
var ModelOptions = []ModelOption{
	{ID: ModelImagen4, Label: "Imagen 4", Description: "Highest quality text-to-image generation."},
	{ID: ModelFlashImage, Label: "Gemini Flash Image", Description: "Fast generation, supports image references.", AcceptsReference: true},
}

// LookupModelOption finds the option for id.
func LookupModelOption(id Model) (ModelOption, bool) {
	for _, o := range ModelOptions {
		if o.ID == id {
			return o, true
		}
	}
	return ModelOption{}, false
}
