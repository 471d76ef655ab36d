package extract

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/anythingbutmetric/abm/internal/unit"
)

const (
	// DefaultModel is the extraction model on the default endpoint.
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// maxArticleChars bounds the article text sent to the model.
	maxArticleChars = 4000
)

// Extractor extracts comparisons from article text. The network client
// satisfies it in production; tests substitute a stub.
type Extractor interface {
	Extract(ctx context.Context, articleText string, knownUnits []unit.Unit) ([]Comparison, error)
}

// LLMExtractor extracts comparisons through an OpenAI-compatible chat
// completion API.
type LLMExtractor struct {
	client *openai.Client
	model  string
}

// NewLLMExtractor creates an extractor. Empty baseURL and model select
// the Groq defaults.
func NewLLMExtractor(apiKey, baseURL, model string) *LLMExtractor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &LLMExtractor{client: openai.NewClientWithConfig(cfg), model: model}
}

// Extract sends the article to the model and parses its JSON response.
// An empty slice is a valid answer: most articles contain no comparison.
func (x *LLMExtractor) Extract(ctx context.Context, articleText string, knownUnits []unit.Unit) ([]Comparison, error) {
	if len(articleText) > maxArticleChars {
		articleText = articleText[:maxArticleChars]
	}

	prompt, err := buildPrompt(articleText, knownUnits)
	if err != nil {
		return nil, err
	}

	resp, err := x.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       x.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return ParseResponse(resp.Choices[0].Message.Content)
}

// ParseResponse parses the model output: either a top-level JSON array
// of comparisons or an object wrapping the array under a common key.
func ParseResponse(raw string) ([]Comparison, error) {
	var comparisons []Comparison
	if err := json.Unmarshal([]byte(raw), &comparisons); err == nil {
		return comparisons, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	for _, key := range []string{"comparisons", "results", "data", "items"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &comparisons); err == nil {
			return comparisons, nil
		}
	}
	return nil, fmt.Errorf("no comparison array found in response")
}

// buildPrompt renders the extraction prompt with the known-unit block.
func buildPrompt(articleText string, knownUnits []unit.Unit) (string, error) {
	type promptUnit struct {
		ID      string   `json:"id"`
		Label   string   `json:"label"`
		Aliases []string `json:"aliases,omitempty"`
	}
	block := make([]promptUnit, 0, len(knownUnits))
	for _, u := range knownUnits {
		block = append(block, promptUnit{ID: u.ID, Label: u.Label, Aliases: u.Aliases})
	}
	unitsJSON, err := json.Marshal(block)
	if err != nil {
		return "", fmt.Errorf("encoding units block: %w", err)
	}

	return fmt.Sprintf(promptTemplate, unitsJSON, articleText), nil
}

// promptTemplate instructs the model to extract journalistic unit
// comparisons. The hard rules mirror the keyword gate applied after
// parsing; the gate is what actually enforces them.
const promptTemplate = `You are extracting journalistic unit comparisons from a news article.

A journalistic unit comparison uses something UNFAMILIAR to help the reader picture scale by comparing it to something FAMILIAR and PHYSICAL, e.g. "The whale weighs as much as 30 double-decker buses."

Known units (use their exact id when you recognise them):
%s

Article text:
---
%s
---

Return a JSON array of comparison objects. Each object must be:
{
  "from": <string id OR new-unit object>,
  "to": <string id OR new-unit object>,
  "factor": <positive number: how many 'to' per one 'from'>,
  "source_quote": "<verbatim sentence from the article>"
}

Hard rules:
1. 'from' and 'to' are DIFFERENT physical, tangible, visualisable things.
2. Never extract time periods, speeds, power, monetary values, probabilities, abstract quantities, purity/quality multipliers, or bare units of measurement.
3. The source_quote must contain explicit size/weight/area/volume comparative language ("times the size of", "as heavy as", "equivalent to", ...).
4. If a unit matches a known unit by id, label, or alias, return its exact string id. Only genuinely new units get a full object: {"id": "snake_case_id", "label": "Human Label", "emoji": "🔵", "aliases": ["plural"], "tags": ["category"]}.
5. Only create new units for physical objects with a stable, recognisable size that could appear in multiple different articles.
6. Return [] when in doubt. Most articles contain no valid comparison; that is the correct output. Do not invent comparisons not stated in the article.`
