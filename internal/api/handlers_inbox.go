package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/inbox"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/httputil"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

const inboxFetchLimit = 20

// HandleInboxEmails fetches the user's recent inbox messages from Gmail and
// returns them categorized. Summaries are not generated here; the dashboard
// requests them per-message on demand.
func (h *Handlers) HandleInboxEmails(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.BadRequest(w, "email is required")
		return
	}

	source, err := h.auth.TokenSource(r.Context(), email)
	if err != nil {
		httputil.Unauthorized(w, "user not authenticated")
		return
	}

	client := h.newGmail(source)
	msgs, err := client.ListRecent(r.Context(), inboxFetchLimit)
	if err != nil {
		logger.Error("inbox fetch failed", "owner", email, "err", err)
		httputil.Error(w, http.StatusBadGateway, "failed to fetch emails")
		return
	}

	out := make([]domain.InboxEmail, 0, len(msgs))
	for _, m := range msgs {
		body := m.Body
		if body == "" {
			body = m.Snippet
		}
		out = append(out, domain.InboxEmail{
			ID:        m.ID,
			Subject:   m.Subject,
			From:      m.From,
			Date:      m.Date,
			Body:      body,
			Snippet:   m.Snippet,
			Title:     inbox.Title(m.Subject),
			Tags:      inbox.Categorize(m.Subject, m.From, body),
			Preview:   inbox.Preview(m.Snippet),
			AISummary: nil,
		})
	}
	httputil.OK(w, out)
}

// HandleSummarizeEmail produces an on-demand summary for one message.
// Summarization failures degrade to a truncated body inside the summarizer,
// so this endpoint only errors when the message itself cannot be fetched.
func (h *Handlers) HandleSummarizeEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in struct {
		Email string `json:"email"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}
	if in.Email == "" {
		httputil.BadRequest(w, "email is required")
		return
	}

	source, err := h.auth.TokenSource(r.Context(), in.Email)
	if err != nil {
		httputil.Unauthorized(w, "user not authenticated")
		return
	}

	msg, err := h.newGmail(source).Get(r.Context(), id)
	if err != nil {
		logger.Error("summarize fetch failed", "id", id, "err", err)
		httputil.Error(w, http.StatusBadGateway, "failed to fetch email")
		return
	}

	body := msg.Body
	if body == "" {
		body = msg.Snippet
	}
	summary := h.summarizer.Summarize(r.Context(), msg.Subject, msg.From, body)

	httputil.OK(w, map[string]any{
		"summary": summary,
		"tags":    inbox.Categorize(msg.Subject, msg.From, body),
	})
}
