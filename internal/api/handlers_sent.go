package api

import (
	"errors"
	"net/http"

	"github.com/divyanshkhurana06/mailed0/internal/pkg/httputil"
	"github.com/divyanshkhurana06/mailed0/internal/registry"
)

// HandleExtensionEmailSent receives the browser extension's send report and
// registers the tracked message. The report channel is at-least-once, so a
// duplicate tracking id is a normal success, not a conflict.
func (h *Handlers) HandleExtensionEmailSent(w http.ResponseWriter, r *http.Request) {
	var in registry.RegisterInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	msg, err := h.registry.Register(r.Context(), in)
	switch {
	case errors.Is(err, registry.ErrMissingTrackingID),
		errors.Is(err, registry.ErrMissingRecipient),
		errors.Is(err, registry.ErrMissingSubject):
		httputil.BadRequest(w, err.Error())
		return
	case err != nil:
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]string{
		"status":     "ok",
		"trackingId": msg.TrackingID,
	})
}

// HandleSentEmails returns the owner's sent messages, newest first, each
// enriched with a freshly computed analytics snapshot. A store read failure
// is a 500: the dashboard distinguishes "error" from "zero opens", so we
// never fabricate partial results.
func (h *Handlers) HandleSentEmails(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("email")
	if owner == "" {
		httputil.BadRequest(w, "email is required")
		return
	}

	emails, err := h.registry.ListForOwner(r.Context(), owner)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, emails)
}
