package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const batchPrompt = `You are a trend analyst. For each post title below, extract the specific product, tool, technology, or technique it is about, if any.

Rules:
- Return short noun phrases (1-4 words), preserving original capitalization (e.g. "DeepSeek R1", "Bun Bundler").
- Skip generic subjects like "python" or "machine learning"; we want specific, emerging topics.
- A title may yield zero, one, or up to three topics.

Titles:
%s

Respond with a JSON array with one element per title, in order. Each element is an array of topic strings (possibly empty).
Example: [["DeepSeek R1"],[],["Xr0 Verifier","Formal Verification"]]

Return ONLY the JSON array, no other text.`

// LLM extracts topic candidates via a chat-completion API. It batches all
// titles into a single request.
type LLM struct {
	client   *http.Client
	provider string // "openai" or "anthropic"
	model    string
	apiKey   string
	baseURL  string
}

// NewLLM creates a new LLM extractor.
func NewLLM(provider, model, apiKey, baseURL string) *LLM {
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-20250514"
		default:
			model = "gpt-4o-mini"
		}
	}
	return &LLM{
		client:   &http.Client{Timeout: 60 * time.Second},
		provider: provider,
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
	}
}

func (e *LLM) Extract(ctx context.Context, titles []string) ([][]string, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	var lines []string
	for i, title := range titles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
	}
	prompt := fmt.Sprintf(batchPrompt, strings.Join(lines, "\n"))

	var raw string
	var err error
	switch e.provider {
	case "anthropic":
		raw, err = e.callAnthropic(ctx, prompt)
	default:
		raw, err = e.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	// Handle markdown code block wrapping.
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw[3:], "\n"); idx >= 0 {
			raw = raw[3+idx+1:]
		}
		if strings.HasSuffix(raw, "```") {
			raw = raw[:len(raw)-3]
		}
		raw = strings.TrimSpace(raw)
	}

	var results [][]string
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("parse llm response: %w\nraw: %s", err, truncateStr(raw, 500))
	}

	// Pad or trim so the result stays aligned with the input.
	for len(results) < len(titles) {
		results = append(results, nil)
	}
	return results[:len(titles)], nil
}

func (e *LLM) callOpenAI(ctx context.Context, prompt string) (string, error) {
	baseURL := e.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	payload := map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.1,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

func (e *LLM) callAnthropic(ctx context.Context, prompt string) (string, error) {
	baseURL := e.baseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	payload := map[string]any{
		"model":      e.model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("anthropic status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content returned")
	}
	return result.Content[0].Text, nil
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
