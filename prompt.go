package imagestudio

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	facelessFragment = "faceless illustration, abstract facial features, no distinct identity"
	qualityFragment  = "award-winning, professional illustration, ultra detailed, stunning, masterpiece, high quality"

	baseNegativeFragment     = "ugly, blurry, poor quality, text, watermark, signature, artist name, deformed, disfigured, bad anatomy, extra limbs, fused fingers, poorly drawn hands, weird eyes, boring, generic, wrong aspect ratio, stretched, distorted, incorrect proportions"
	facelessNegativeFragment = "detailed face, eyes, nose, mouth, identifiable person,"

	facelessEditSuffix = ". IMPORTANT: Maintain the faceless illustration style. Ensure all characters in the image have abstract or hidden facial features, without any detailed eyes, nose, or mouth."
)

var aspectRatioDescriptions = map[AspectRatio]string{
	AspectRatio1x1:  "a square 1:1 aspect ratio",
	AspectRatio3x4:  "a portrait 3:4 aspect ratio",
	AspectRatio4x3:  "a landscape 4:3 aspect ratio",
	AspectRatio9x16: "a tall portrait 9:16 aspect ratio",
	AspectRatio16x9: "a widescreen landscape 16:9 aspect ratio",
}

var aspectRatioDimensions = map[AspectRatio]string{
	AspectRatio1x1:  "1024x1024px square",
	AspectRatio3x4:  "768x1024px portrait",
	AspectRatio4x3:  "1024x768px landscape",
	AspectRatio9x16: "1080x1920px portrait",
	AspectRatio16x9: "1920x1080px landscape",
}

// Request is everything the user chose for one generate action.
type Request struct {
	Prompt         string
	Style          StyleOption
	Reference      *InputImage
	NumberOfImages int
	AspectRatio    AspectRatio
	Model          Model
	Faceless       bool
}

func negativePrompt(faceless bool) string {
	neg := ""
	if faceless {
		neg = facelessNegativeFragment
	}
	return fmt.Sprintf("negative prompt: %s %s", neg, baseNegativeFragment)
}

// ComposeBatchPrompt builds the prompt sent to batch-capable models, which
// understand a plain description of the aspect ratio.
func ComposeBatchPrompt(req Request) string {
	aspect := ""
	if desc, ok := aspectRatioDescriptions[req.AspectRatio]; ok {
		aspect = "in " + desc
	}
	return joinFragments(
		req.Prompt,
		req.Style.Prompt,
		facelessIf(req.Faceless),
		qualityFragment,
		aspect,
		negativePrompt(req.Faceless),
	)
}

// ComposePerCallPrompt builds the prompt for models that produce one image
// per call. These need the aspect ratio spelled out in pixels.
func ComposePerCallPrompt(req Request) string {
	aspect := ""
	if dims, ok := aspectRatioDimensions[req.AspectRatio]; ok {
		aspect = fmt.Sprintf("CRITICAL INSTRUCTION: Generate a high-resolution image with a strict aspect ratio of %s (e.g., %s). This requirement is non-negotiable.", req.AspectRatio, dims)
	}
	return joinFragments(
		"reference photo of "+req.Prompt,
		req.Style.Prompt,
		facelessIf(req.Faceless),
		aspect,
		qualityFragment,
		negativePrompt(req.Faceless),
	)
}

// ComposeEditInstruction appends the faceless constraint to an edit instruction.
func ComposeEditInstruction(instruction string, faceless bool) string {
	if faceless {
		return instruction + facelessEditSuffix
	}
	return instruction
}

func facelessIf(faceless bool) string {
	if faceless {
		return facelessFragment
	}
	return ""
}

func joinFragments(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

const suggestionWithImageInstruction = `You are a world-class prompt engineer for advanced generative AI image models. Your task is to analyze a user's reference image and text idea to generate 3 distinct, visually rich prompts in ENGLISH for creating stunning FACELESS illustrations. In faceless illustrations, characters have abstracted, obscured, or no facial features.

Your response MUST be a JSON object with a single key 'suggestions' which is an array of 3 strings. The prompts should be structured as follows:

1.  **First Prompt (Descriptive):** Create a detailed, descriptive prompt that meticulously captures the subject, composition, color palette, lighting, and mood of the provided reference image. This prompt should aim to regenerate a very similar image.
2.  **Second & Third Prompts (Creative Variations):** Generate two highly creative and distinct prompts inspired by the reference image and user's idea. These can explore different scenarios, styles, or concepts while retaining the core theme.

Ensure all prompts integrate the 'faceless' concept and are written in ENGLISH. Do not add any other text or markdown formatting outside the JSON structure.`

const suggestionTextInstruction = `You are a world-class prompt engineer for advanced generative AI image models. Your task is to transform a user's simple idea into 3 distinct, highly creative, and visually rich prompts in ENGLISH for generating stunning FACELESS illustrations. In faceless illustrations, characters have abstracted, obscured, or no facial features (e.g., viewed from behind, features hidden by objects/shadows, or artistically undefined). Your prompts must creatively integrate this core 'faceless' concept. For each prompt, describe a masterpiece, including vivid details about the subject, environment, composition, lighting, color palette, and mood. Ensure all generated prompts are in ENGLISH. Return the response as a JSON object with a single key 'suggestions' which is an array of 3 strings. Do not include any other text or markdown formatting.`

const classificationInstruction = `You are an AI expert in categorizing image generation prompts. Your task is to analyze the user's prompt and determine which of the provided styles it most closely aligns with. Respond ONLY with the JSON object containing the 'id' of the best-matching style. Do not add any other commentary or markdown.`

// SuggestionInstructions returns the system instruction and user text for
// an ideation call.
func SuggestionInstructions(req SuggestionRequest) (system, user string) {
	if req.Reference != nil {
		if req.Description != "" {
			return suggestionWithImageInstruction, "User's idea to consider for the creative variations: \"" + req.Description + "\""
		}
		return suggestionWithImageInstruction, "Analyze the provided reference image and generate prompts according to the system instructions."
	}
	if req.Description != "" {
		return suggestionTextInstruction, "Use the following idea to generate the prompts: \"" + req.Description + "\""
	}
	return suggestionTextInstruction, "Generate 3 completely random, distinct, and creative prompts. Each prompt should be visually rich and suitable for generating a stunning faceless illustration."
}

type styleListing struct {
	ID          StyleID `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// ClassificationInstructions returns the system instruction and user text
// for matching prompt against styles.
func ClassificationInstructions(prompt string, styles []StyleOption) (system, user string) {
	listing := make([]styleListing, 0, len(styles))
	for _, s := range styles {
		listing = append(listing, styleListing{ID: s.ID, Label: s.Label, Description: s.Prompt})
	}
	encoded, _ := json.Marshal(listing)
	user = fmt.Sprintf("Prompt to analyze: \"%s\"\n\nAvailable styles:\n%s\n\nWhich style 'id' from the list above best matches the prompt?", prompt, encoded)
	return classificationInstruction, user
}
