// Package inbox fetches and enriches the user's Gmail inbox for the
// dashboard: message listing, body decoding, keyword categorization, and
// on-demand summarization.
package inbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/divyanshkhurana06/mailed0/internal/pkg/httpretry"
)

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1"

// GmailClient is a thin client over the Gmail REST API authenticated with a
// per-user token source.
type GmailClient struct {
	baseURL    string
	source     oauth2.TokenSource
	httpClient httpretry.HTTPDoer
}

// NewGmailClient creates a Gmail client for one user.
func NewGmailClient(source oauth2.TokenSource) *GmailClient {
	return &GmailClient{
		baseURL:    gmailBaseURL,
		source:     source,
		httpClient: httpretry.NewRetryClient(nil, 3),
	}
}

// Message is the subset of a Gmail message the dashboard needs.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    string
	Snippet string
	Body    string
}

// ListRecent returns up to max inbox messages with full details.
func (c *GmailClient) ListRecent(ctx context.Context, max int) ([]Message, error) {
	params := url.Values{}
	params.Set("maxResults", fmt.Sprintf("%d", max))
	params.Set("q", "is:inbox")

	body, err := c.doRequest(ctx, "/users/me/messages?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var list struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode message list: %w", err)
	}

	msgs := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.Get(ctx, ref.ID)
		if err != nil {
			// One unreadable message should not sink the whole inbox.
			continue
		}
		msgs = append(msgs, *msg)
	}
	return msgs, nil
}

// Get fetches one message with headers and decoded body.
func (c *GmailClient) Get(ctx context.Context, id string) (*Message, error) {
	body, err := c.doRequest(ctx, "/users/me/messages/"+url.PathEscape(id)+"?format=full")
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	var raw gmailMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", id, err)
	}

	msg := &Message{
		ID:      raw.ID,
		Snippet: raw.Snippet,
		Subject: raw.header("Subject", "No Subject"),
		From:    raw.header("From", "Unknown"),
		Date:    raw.header("Date", ""),
		Body:    raw.decodeBody(),
	}
	return msg, nil
}

// Profile returns the authenticated user's email address.
func (c *GmailClient) Profile(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, "/users/me/profile")
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	var profile struct {
		EmailAddress string `json:"emailAddress"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", err
	}
	return profile.EmailAddress, nil
}

func (c *GmailClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	token, err := c.source.Token()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gmail API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// gmailMessage mirrors the Gmail wire format closely enough to pull headers
// and the first text part.
type gmailMessage struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Body struct {
			Data string `json:"data"`
		} `json:"body"`
		Parts []struct {
			MimeType string `json:"mimeType"`
			Body     struct {
				Data string `json:"data"`
			} `json:"body"`
		} `json:"parts"`
	} `json:"payload"`
}

func (m *gmailMessage) header(name, fallback string) string {
	for _, h := range m.Payload.Headers {
		if h.Name == name && h.Value != "" {
			return h.Value
		}
	}
	return fallback
}

// decodeBody returns the message body, preferring the top-level body, then
// the first text/plain or text/html part. Falls back to "" when no part
// decodes; the caller uses the snippet instead.
func (m *gmailMessage) decodeBody() string {
	if s := decodeB64(m.Payload.Body.Data); s != "" {
		return s
	}
	for _, part := range m.Payload.Parts {
		if part.MimeType == "text/plain" || part.MimeType == "text/html" {
			if s := decodeB64(part.Body.Data); s != "" {
				return s
			}
		}
	}
	return ""
}

func decodeB64(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		// Gmail usually emits unpadded base64url but tolerate padded too.
		if decoded, err = base64.URLEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	return string(decoded)
}
