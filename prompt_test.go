package imagestudio

import (
	"strings"
	"testing"
)

func TestComposeBatchPrompt(t *testing.T) {
	style, _ := LookupStyle("watercolor")

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "faceless with aspect",
			req: Request{
				Prompt:      "a girl reading under a tree",
				Style:       style,
				AspectRatio: AspectRatio3x4,
				Faceless:    true,
			},
			want: strings.Join([]string{
				"a girl reading under a tree",
				style.Prompt,
				facelessFragment,
				qualityFragment,
				"in a portrait 3:4 aspect ratio",
				"negative prompt: " + facelessNegativeFragment + " " + baseNegativeFragment,
			}, ", "),
		},
		{
			name: "no style no aspect",
			req:  Request{Prompt: "a teapot"},
			want: "a teapot, " + qualityFragment + ", negative prompt:  " + baseNegativeFragment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeBatchPrompt(tt.req); got != tt.want {
				t.Errorf("ComposeBatchPrompt() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestComposePerCallPrompt(t *testing.T) {
	got := ComposePerCallPrompt(Request{
		Prompt:      "a lighthouse",
		Style:       DefaultStyle(),
		AspectRatio: AspectRatio9x16,
	})

	if !strings.HasPrefix(got, "reference photo of a lighthouse, "+DefaultStyle().Prompt+", CRITICAL INSTRUCTION") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "strict aspect ratio of 9:16 (e.g., 1080x1920px portrait)") {
		t.Errorf("missing pixel dimensions: %q", got)
	}
	if strings.Contains(got, facelessFragment) {
		t.Errorf("faceless fragment present without the flag: %q", got)
	}
	if idx := strings.Index(got, "CRITICAL"); idx > strings.Index(got, qualityFragment) {
		t.Error("aspect instruction should come before the quality fragment")
	}
}

func TestComposeEditInstruction(t *testing.T) {
	if got := ComposeEditInstruction("add snow", false); got != "add snow" {
		t.Errorf("non-faceless instruction changed: %q", got)
	}
	if got := ComposeEditInstruction("add snow", true); got != "add snow"+facelessEditSuffix {
		t.Errorf("faceless instruction = %q", got)
	}
}

func TestSuggestionInstructions(t *testing.T) {
	ref := &InputImage{Data: []byte{1}, MIMEType: "image/png"}

	tests := []struct {
		name       string
		req        SuggestionRequest
		wantSystem string
		wantUser   string
	}{
		{"random", SuggestionRequest{}, suggestionTextInstruction, "Generate 3 completely random"},
		{"idea", SuggestionRequest{Description: "cats in space"}, suggestionTextInstruction, `Use the following idea to generate the prompts: "cats in space"`},
		{"image only", SuggestionRequest{Reference: ref}, suggestionWithImageInstruction, "Analyze the provided reference image"},
		{"image and idea", SuggestionRequest{Description: "autumn", Reference: ref}, suggestionWithImageInstruction, `User's idea to consider for the creative variations: "autumn"`},
		{"idea kept verbatim", SuggestionRequest{Description: "a \"tiny\" fox\nin snow"}, suggestionTextInstruction, "Use the following idea to generate the prompts: \"a \"tiny\" fox\nin snow\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, user := SuggestionInstructions(tt.req)
			if system != tt.wantSystem {
				t.Errorf("wrong system instruction")
			}
			if !strings.HasPrefix(user, tt.wantUser) {
				t.Errorf("user text = %q, want prefix %q", user, tt.wantUser)
			}
		})
	}
}

func TestClassificationInstructions(t *testing.T) {
	system, user := ClassificationInstructions("a pixel knight", StyleOptions[:2])
	if system != classificationInstruction {
		t.Error("wrong system instruction")
	}
	if !strings.Contains(user, `Prompt to analyze: "a pixel knight"`) {
		t.Errorf("user text missing prompt: %q", user)
	}
	if !strings.Contains(user, `"id":"anime"`) || !strings.Contains(user, `"id":"flat_illustration"`) {
		t.Errorf("user text missing style ids: %q", user)
	}
	if strings.Contains(user, "pixel_art") {
		t.Errorf("user text lists styles that were not passed: %q", user)
	}

	_, user = ClassificationInstructions("two \"lines\"\nof text", StyleOptions[:1])
	if !strings.Contains(user, "Prompt to analyze: \"two \"lines\"\nof text\"") {
		t.Errorf("prompt not passed verbatim: %q", user)
	}
}
