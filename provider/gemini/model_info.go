package gemini

import "github.com/mhpenta/imagestudio"

var supportedAspectRatios = []imagestudio.AspectRatio{
	imagestudio.AspectRatio1x1,
	imagestudio.AspectRatio3x4,
	imagestudio.AspectRatio4x3,
	imagestudio.AspectRatio9x16,
	imagestudio.AspectRatio16x9,
}

// Imagen4Info is the model info for Imagen 4.
//
// Imagen returns up to four images from a single call and takes no
// reference image.
var Imagen4Info = imagestudio.ModelInfo{
	Name:         string(imagestudio.ModelImagen4),
	Label:        "Imagen 4",
	Description:  "Highest quality text-to-image generation.",
	Provider:     imagestudio.ProviderGeminiAPI,
	APIModelName: APIModelImagen4,

	Capabilities: imagestudio.ModelCapabilities{
		SupportsTextToImage:    true,
		SupportsImageEditing:   false,
		SupportsBatchOutput:    true,
		SupportsReferenceImage: false,
		MaxOutputImages:        4,
	},

	SupportedAspectRatios: supportedAspectRatios,

	RateLimits: imagestudio.RateLimits{
		TokensPerMinute:   1000000,
		RequestsPerMinute: 10,
	},

	// Imagen is billed per output image.
	Pricing: imagestudio.Pricing{
		ImageGenerationCost: 0.04,
	},
}

// FlashImageInfo is the model info for Gemini 2.5 Flash Image.
//
// Each call yields at most one image, so the manager calls it once per
// requested image. It accepts a reference image and serves edits.
var FlashImageInfo = imagestudio.ModelInfo{
	Name:         string(imagestudio.ModelFlashImage),
	Label:        "Gemini Flash Image",
	Description:  "Fast generation, supports image references.",
	Provider:     imagestudio.ProviderGeminiAPI,
	APIModelName: APIModelFlashImage,

	Capabilities: imagestudio.ModelCapabilities{
		SupportsTextToImage:    true,
		SupportsImageEditing:   true,
		SupportsBatchOutput:    false,
		SupportsReferenceImage: true,
		MaxOutputImages:        imagestudio.MaxImagesPerRequest,
	},

	SupportedAspectRatios: supportedAspectRatios,

	RateLimits: imagestudio.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
		TokensPerDay:      1000000000,
	},

	// Image output is priced at ~$30/million tokens ($0.039 per 1024x1024 image).
	Pricing: imagestudio.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 30.00,
		ImageGenerationCost:    0.039,
	},
}
