package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
)

// DefaultGeminiModel is used when the configuration does not name one.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient implements AIClient on top of the Google Gemini API.
type GeminiClient struct {
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiClient creates a Gemini-backed classifier. The API key is
// required; modelName falls back to DefaultGeminiModel when empty.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

// ClassifyBatch asks the model for one category per description and parses
// the JSON array out of the response. A short or oversized answer is padded
// or truncated so the result stays positional.
func (c *GeminiClient) ClassifyBatch(ctx context.Context, descriptions []string) ([]string, error) {
	if len(descriptions) == 0 {
		return nil, nil
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(descriptions)))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	labels, err := parseLabels(raw)
	if err != nil {
		return nil, err
	}

	if len(labels) != len(descriptions) {
		c.logger.Warn("Gemini returned wrong label count",
			logging.Field{Key: "expected", Value: len(descriptions)},
			logging.Field{Key: "got", Value: len(labels)})
	}
	for len(labels) < len(descriptions) {
		labels = append(labels, models.CategoryOther)
	}
	return labels[:len(descriptions)], nil
}

// promptCategories excludes the subscriptions label: that category is
// assigned by the reconciliation flow, never by the model.
func promptCategories() []string {
	out := make([]string, 0, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		if cat == models.CategorySubscriptions {
			continue
		}
		out = append(out, cat)
	}
	return out
}

func buildPrompt(descriptions []string) string {
	var b strings.Builder
	b.WriteString("Você é um classificador de despesas pessoais brasileiras.\n")
	b.WriteString("Classifique cada descrição de transação abaixo em exatamente uma destas categorias:\n")
	b.WriteString(strings.Join(promptCategories(), ", "))
	b.WriteString("\n\nDescrições:\n")
	for i, desc := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, desc)
	}
	fmt.Fprintf(&b, "\nResponda apenas com um array JSON de %d strings, na mesma ordem, sem explicações. Use \"%s\" quando não tiver certeza.\n", len(descriptions), models.CategoryOther)
	return b.String()
}

// parseLabels extracts the JSON string array from a model answer, stripping
// a markdown code fence if the model wrapped its output in one.
func parseLabels(raw string) ([]string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in gemini response")
	}

	var labels []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &labels); err != nil {
		return nil, fmt.Errorf("parsing gemini response: %w", err)
	}
	return labels, nil
}
