package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mhpenta/imagestudio"
	"google.golang.org/genai"
)

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
}

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"styleId": {
			Type:        genai.TypeString,
			Description: "The 'id' of the single best matching style from the provided list.",
		},
	},
	Required: []string{"styleId"},
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

type classificationResponse struct {
	StyleID string `json:"styleId"`
}

// SuggestPrompts asks the suggestion model for three prompt ideas.
func (g *GeminiGenerator) SuggestPrompts(ctx context.Context, req imagestudio.SuggestionRequest) ([]string, error) {
	system, user := imagestudio.SuggestionInstructions(req)

	parts := []*genai.Part{{Text: user}}
	if req.Reference != nil {
		parts = append([]*genai.Part{inlinePart(*req.Reference)}, parts...)
	}

	text, err := g.generateJSON(ctx, g.suggestModel, system, parts, suggestionSchema)
	if err != nil {
		return nil, err
	}

	var resp suggestionResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", imagestudio.ErrMalformedResponse, err)
	}
	if resp.Suggestions == nil {
		return nil, imagestudio.ErrMalformedResponse
	}
	return resp.Suggestions, nil
}

// ClassifyStyle asks the classification model which preset fits prompt.
// The returned id is not checked against styles.
func (g *GeminiGenerator) ClassifyStyle(ctx context.Context, prompt string, styles []imagestudio.StyleOption) (imagestudio.StyleID, error) {
	system, user := imagestudio.ClassificationInstructions(prompt, styles)

	text, err := g.generateJSON(ctx, g.classifyModel, system, []*genai.Part{{Text: user}}, classificationSchema)
	if err != nil {
		return "", err
	}

	var resp classificationResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return "", fmt.Errorf("%w: %v", imagestudio.ErrMalformedResponse, err)
	}
	if resp.StyleID == "" {
		return "", imagestudio.ErrMalformedResponse
	}
	return imagestudio.StyleID(resp.StyleID), nil
}

func (g *GeminiGenerator) generateJSON(ctx context.Context, model, system string, parts []*genai.Part, schema *genai.Schema) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}

	result, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		config)
	if err != nil {
		if rlErr := checkRateLimitError(err, model); rlErr != nil {
			return "", rlErr
		}
		return "", err
	}

	text := strings.TrimSpace(responseText(result))
	if text == "" {
		return "", imagestudio.ErrMalformedResponse
	}
	return text, nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
