package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/divyanshkhurana06/mailed0/internal/config"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/httpretry"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

const summarizerBaseURL = "https://api-inference.huggingface.co/models/"

// Summarizer produces short summaries via the HuggingFace inference API.
// Summarization is best-effort: any upstream failure falls back to a
// truncated body, never an error to the dashboard.
type Summarizer struct {
	baseURL    string
	apiKey     string
	models     []string
	httpClient httpretry.HTTPDoer
}

// NewSummarizer creates a summarizer from config.
func NewSummarizer(cfg config.SummarizerConfig) *Summarizer {
	return &Summarizer{
		baseURL: summarizerBaseURL,
		apiKey:  cfg.APIKey,
		models:  cfg.Models,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 1),
	}
}

// Summarize returns a summary of the email, trying each configured model in
// order. On total failure it returns the truncated cleaned body.
func (s *Summarizer) Summarize(ctx context.Context, subject, from, body string) string {
	clean := stripHTML(body)
	text := fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s", subject, from, clean)
	if len(text) > 1000 {
		text = text[:1000]
	}

	for _, model := range s.models {
		summary, err := s.callModel(ctx, model, text)
		if err != nil {
			logger.Warn("summarizer model failed", "model", model, "err", err)
			continue
		}
		if summary != "" {
			return summary
		}
	}

	logger.Warn("all summarizer models failed, using truncation fallback", "subject", subject)
	return truncate(clean, 300)
}

func (s *Summarizer) callModel(ctx context.Context, model, text string) (string, error) {
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": 300,
			"min_length": 50,
			"do_sample":  false,
			"num_beams":  3,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned %d", resp.StatusCode)
	}

	var result []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result) == 0 {
		return "", fmt.Errorf("empty result")
	}
	return result[0].SummaryText, nil
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// stripHTML flattens HTML bodies to plain text for summarization.
func stripHTML(body string) string {
	if !looksLikeHTML(body) {
		return body
	}
	text := htmlTagRegex.ReplaceAllString(body, " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<html") ||
		strings.Contains(content, "<body") ||
		strings.Contains(content, "<div")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
