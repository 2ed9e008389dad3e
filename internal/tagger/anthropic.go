package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pbaille/cookbook/internal/domain"
)

const (
	anthropicAPI = "https://api.anthropic.com/v1/messages"
	defaultModel = "claude-sonnet-4-20250514"
)

// Suggestion holds tags proposed for one recipe
type Suggestion struct {
	Cuisine []string `json:"cuisine"`
	Type    []string `json:"type"`
	Custom  []string `json:"custom"`
}

// Tagger proposes recipe tags via the Anthropic API
type Tagger struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// Option configures a Tagger
type Option func(*Tagger)

// WithModel overrides the model name
func WithModel(model string) Option {
	return func(t *Tagger) {
		if model != "" {
			t.model = model
		}
	}
}

// WithEndpoint points the tagger at another messages endpoint
func WithEndpoint(url string) Option {
	return func(t *Tagger) { t.endpoint = url }
}

// New creates a Tagger. An API key is required.
func New(apiKey string, opts ...Option) (*Tagger, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (env or tagger.api_key)")
	}

	t := &Tagger{
		apiKey:   apiKey,
		model:    defaultModel,
		endpoint: anthropicAPI,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Suggest asks the model for tags, preferring the given vocabulary.
// Suggested tags already on the recipe are dropped.
func (t *Tagger) Suggest(ctx context.Context, r domain.Recipe, vocab domain.PresetTags) (*Suggestion, error) {
	resp, err := t.callAPI(ctx, buildPrompt(r, vocab))
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	s, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}

	s.Cuisine = fresh(s.Cuisine, r.Tags.Cuisine)
	s.Type = fresh(s.Type, r.Tags.Type)
	s.Custom = fresh(s.Custom, r.Tags.Custom)
	return s, nil
}

// Apply merges a suggestion into the recipe's tags
func Apply(r *domain.Recipe, s *Suggestion) {
	r.Tags.Cuisine = append(r.Tags.Cuisine, fresh(s.Cuisine, r.Tags.Cuisine)...)
	r.Tags.Type = append(r.Tags.Type, fresh(s.Type, r.Tags.Type)...)
	r.Tags.Custom = append(r.Tags.Custom, fresh(s.Custom, r.Tags.Custom)...)
}

// fresh returns the trimmed, deduplicated tags not already in have
func fresh(tags, have []string) []string {
	seen := make(map[string]bool, len(have)+len(tags))
	for _, h := range have {
		seen[h] = true
	}
	out := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func buildPrompt(r domain.Recipe, vocab domain.PresetTags) string {
	var sb strings.Builder

	sb.WriteString("Suggest tags for this recipe. Return JSON only.\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", r.Description)
	}
	if len(r.Ingredients) > 0 {
		sb.WriteString("Ingredients:\n")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&sb, "- %s %s\n", ing.Name, ing.Amount)
		}
	}
	if len(r.Steps) > 0 {
		sb.WriteString("Steps:\n")
		for i, s := range r.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s.Text)
		}
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Cuisine tags in use (prefer these): %s\n", strings.Join(vocab.Cuisine, ", "))
	fmt.Fprintf(&sb, "Type tags in use (prefer these): %s\n", strings.Join(vocab.Type, ", "))
	if tags := r.Tags.Custom; len(tags) > 0 {
		fmt.Fprintf(&sb, "Custom tags already set: %s\n", strings.Join(tags, ", "))
	}

	sb.WriteString(`
Return a JSON object with this structure:
{
  "cuisine": ["中餐"],
  "type": ["主菜类"],
  "custom": ["下饭菜", "快手菜"]
}

Rules:
- At most one cuisine and one type, picked from the lists above when one fits
- 1-3 short custom tags describing occasion, flavour or technique
- Write tags in the language of the recipe name
- Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (t *Tagger) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     t.model,
		MaxTokens: 512,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", t.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	for _, c := range apiResp.Content {
		if c.Type == "text" || c.Type == "" {
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("empty response")
}

func parseResponse(resp string) (*Suggestion, error) {
	// models sometimes wrap the JSON in a markdown fence
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var s Suggestion
	if err := json.Unmarshal([]byte(resp), &s); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	return &s, nil
}
