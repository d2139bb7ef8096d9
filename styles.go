package imagestudio

// StyleID identifies a style preset.
type StyleID string

// StyleOption is a named style preset and the prompt fragment it adds.
type StyleOption struct {
	ID     StyleID
	Label  string
	Prompt string
}

// StyleOptions lists the presets in display order. The first is the default.
var StyleOptions = []StyleOption{
	{ID: "anime", Label: "Anime", Prompt: "anime style, flat cel-shade, bold lineart, clean palette, soft glow minimal"},
	{ID: "flat_illustration", Label: "Flat Illustration", Prompt: "flat illustration, vector-like, clean shapes, pastel colors, no textures"},
	{ID: "3d_illustration", Label: "3D Illustration", Prompt: "3d illustration, soft PBR, sub-surface feel, gentle rim-light, studio lighting"},
	{ID: "clayture_3d", Label: "Clayture 3D", Prompt: "3d claymation style, plasticine models, soft clay texture, subtle fingerprints, stop-motion aesthetic, vibrant colors, soft diffused lighting"},
	{ID: "children_book", Label: "Children's Book", Prompt: "children's book illustration, pastel brushes, paper texture, warm colors, soft outlines"},
	{ID: "painterly", Label: "Painterly", Prompt: "painterly style, oil/acrylic brush strokes, canvas texture, dramatic lighting"},
	{ID: "isometric", Label: "Isometric", Prompt: "isometric style, 3/4 perspective, neat grid, soft shadows"},
	{ID: "corporate_memphis", Label: "Corporate Memphis", Prompt: "corporate memphis art style, flat minimalist vector characters, oversized limbs, simple geometric shapes, bright color palette, alegria style"},
	{ID: "realism", Label: "Realism", Prompt: "photorealistic, hyperrealistic, high detail, dramatic lighting, 8k"},
	{ID: "semi_realism", Label: "Semi-Realism", Prompt: "semi-realistic, digital painting, detailed but stylized features, soft lighting, concept art"},
	{ID: "cartoon", Label: "Cartoon", Prompt: "classic cartoon style, bold outlines, vibrant solid colors, expressive and simple shapes, 2D animation look"},
	{ID: "comic_book", Label: "Comic Book", Prompt: "american comic book style, bold inks, cross-hatching shadows, dynamic poses, halftone dots, graphic novel art"},
	{ID: "hand_drawn", Label: "Hand-Drawn", Prompt: "hand-drawn sketch, pencil or ink lines, visible strokes, sketchbook style, organic texture"},
	{ID: "watercolor", Label: "Watercolor", Prompt: "watercolor painting, soft washes, wet-on-wet technique, paper texture, bleeding colors, delicate and translucent"},
	{ID: "stylized_caricature", Label: "Caricature", Prompt: "stylized caricature, exaggerated features for expressive effect, playful and humorous, simple background"},
	{ID: "manhwa", Label: "Manhwa", Prompt: "manhwa webtoon style, clean sharp lines, gradient coloring, dramatic cell shading, vertical format feel, expressive characters"},
	{ID: "modern_cartoon", Label: "Modern Cartoon", Prompt: "modern cartoon style, calarts style, bean-shaped heads, simple rounded forms, clean digital look, bright and friendly"},
	{ID: "retro_vintage", Label: "Retro/Vintage", Prompt: "retro vintage illustration, 1950s poster art, aged paper texture, limited color palette, screen print aesthetic, nostalgic feel"},
	{ID: "pixel_art", Label: "Pixel Art", Prompt: "pixel art, 16-bit or 32-bit style, crisp pixelated grid, limited color palette, dithering, isometric or side-scroller view"},
}

// DefaultStyle returns the first preset.
func DefaultStyle() StyleOption {
	return StyleOptions[0]
}

// LookupStyle finds a preset by id.
func LookupStyle(id StyleID) (StyleOption, bool) {
	for _, s := range StyleOptions {
		if s.ID == id {
			return s, true
		}
	}
	return StyleOption{}, false
}
