package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// GeminiSuggester asks a Gemini model for categories.
type GeminiSuggester struct {
	client *genai.Client
	model  string
}

// NewGeminiSuggester creates a suggester. Credentials come from the
// environment (GOOGLE_API_KEY or Vertex AI settings).
func NewGeminiSuggester(ctx context.Context, model string) (*GeminiSuggester, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSuggester: create genai client: %w", err)
	}
	return &GeminiSuggester{client: client, model: model}, nil
}

type suggestion struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
}

// Suggest sends one prompt for all candidates.
func (g *GeminiSuggester) Suggest(ctx context.Context, candidates []Candidate, known []string) (map[int]string, error) {
	prompt, err := buildPrompt(candidates, known)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Suggest: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Suggest: empty response from model")
	}
	return parseSuggestions(rawText)
}

func buildPrompt(candidates []Candidate, known []string) (string, error) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("buildPrompt: marshal candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString("You categorize personal finance transactions.\n\n")
	if len(known) > 0 {
		b.WriteString("Prefer one of these existing categories:\n")
		for _, c := range known {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("Only invent a new short category name when none fits.\n\n")
	}
	b.WriteString("Transactions:\n")
	b.Write(payload)
	b.WriteString("\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n" +
		"Output a JSON array of objects with fields \"id\" (number, copied from the input) and \"category\" (string).\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"[\" and end with \"]\".\n")
	return b.String(), nil
}

func parseSuggestions(raw string) (map[int]string, error) {
	var items []suggestion
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("parseSuggestions: unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	out := make(map[int]string, len(items))
	for _, it := range items {
		out[it.ID] = strings.TrimSpace(it.Category)
	}
	return out, nil
}

// cleanModelJSON strips Markdown fences the model may add despite the prompt.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

var _ Suggester = (*GeminiSuggester)(nil)
