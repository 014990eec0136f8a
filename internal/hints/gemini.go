package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"scadenze/internal/recurring"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// maxKeysPerPrompt bounds the prompt size; larger requests are split.
const maxKeysPerPrompt = 100

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiCategorizer categorizes merchants with a Gemini model.
type GeminiCategorizer struct {
	generate generateFunc
}

// NewGeminiCategorizer creates a categorizer backed by the Gemini API.
func NewGeminiCategorizer(ctx context.Context, apiKey, model string) (*GeminiCategorizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{{Text: prompt}},
			},
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return resp.Text(), nil
	}
	return &GeminiCategorizer{generate: generate}, nil
}

// Categorize implements Categorizer.
func (g *GeminiCategorizer) Categorize(ctx context.Context, keys []string) (recurring.Hints, error) {
	keys = dedupe(keys)
	out := make(recurring.Hints, len(keys))
	for start := 0; start < len(keys); start += maxKeysPerPrompt {
		end := min(start+maxKeysPerPrompt, len(keys))
		batch := keys[start:end]

		raw, err := g.generate(ctx, buildPrompt(batch))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(raw) == "" {
			return nil, errors.New("empty response from model")
		}
		hints, err := decodeHints(raw, batch)
		if err != nil {
			return nil, err
		}
		for k, v := range hints {
			out[k] = v
		}
	}
	return out, nil
}

func buildPrompt(keys []string) string {
	cats := recurring.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	list, _ := json.Marshal(keys)

	var b strings.Builder
	b.WriteString("You classify merchants found in personal bank transactions.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- For each merchant name in the input list, pick exactly one category.\n")
	b.WriteString("- Allowed categories: " + strings.Join(names, ", ") + ".\n")
	b.WriteString("- Use \"other\" when none fits.\n\n")
	b.WriteString("Output a JSON array of objects with fields \"key\" (the merchant name, unchanged) and \"category\".\n")
	b.WriteString("Return ONLY valid raw JSON. Do NOT use code fences or Markdown.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n\n")
	b.WriteString("Input:\n")
	b.Write(list)
	b.WriteString("\n")
	return b.String()
}

type modelHint struct {
	Key      string `json:"key"`
	Category string `json:"category"`
}

// decodeHints parses the model answer, keeping only requested keys with a
// known category.
func decodeHints(raw string, asked []string) (recurring.Hints, error) {
	var items []modelHint
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}

	want := make(map[string]struct{}, len(asked))
	for _, k := range asked {
		want[k] = struct{}{}
	}

	out := make(recurring.Hints, len(items))
	for _, it := range items {
		key := strings.TrimSpace(it.Key)
		if _, ok := want[key]; !ok {
			continue
		}
		cat, ok := recurring.ParseCategory(it.Category)
		if !ok {
			continue
		}
		out[key] = cat
	}
	return out, nil
}

// cleanModelJSON strips Markdown fences and any chatter around the array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
