package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/divyanshkhurana06/mailed0/internal/auth"
	"github.com/divyanshkhurana06/mailed0/internal/inbox"
	"github.com/divyanshkhurana06/mailed0/internal/registry"
)

// gmailFactory builds a per-user Gmail client from a token source.
// Injectable so handler tests can stub the upstream.
type gmailFactory func(oauth2.TokenSource) inboxClient

// inboxClient is the slice of inbox.GmailClient the handlers use.
type inboxClient interface {
	ListRecent(ctx context.Context, max int) ([]inbox.Message, error)
	Get(ctx context.Context, id string) (*inbox.Message, error)
}

// Handlers carries the dependencies for all API endpoints.
type Handlers struct {
	registry    *registry.Service
	auth        *auth.Manager
	summarizer  *inbox.Summarizer
	frontendURL string
	newGmail    gmailFactory
}

// NewHandlers creates the API handler set.
func NewHandlers(reg *registry.Service, am *auth.Manager, sum *inbox.Summarizer, frontendURL string) *Handlers {
	return &Handlers{
		registry:    reg,
		auth:        am,
		summarizer:  sum,
		frontendURL: frontendURL,
		newGmail: func(src oauth2.TokenSource) inboxClient {
			return inbox.NewGmailClient(src)
		},
	}
}

// HealthCheck is the liveness probe.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
