package api

import (
	"net/http"
	"net/url"

	"github.com/divyanshkhurana06/mailed0/internal/pkg/httputil"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

// HandleGoogleAuth returns the Google consent URL for the dashboard to open.
func (h *Handlers) HandleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	url, _ := h.auth.ConsentURL()
	httputil.OK(w, map[string]string{"url": url})
}

// HandleGoogleCallback finishes the OAuth flow and redirects back to the
// frontend with a success or error marker.
func (h *Handlers) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		logger.Warn("oauth consent denied", "reason", errParam)
		http.Redirect(w, r, h.frontendURL+"/auth/error?reason="+url.QueryEscape(errParam), http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, h.frontendURL+"/auth/error?reason=no_code", http.StatusFound)
		return
	}

	email, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("oauth exchange failed", "err", err)
		http.Redirect(w, r, h.frontendURL+"/auth/error?reason=exchange_failed", http.StatusFound)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/auth/success?email="+url.QueryEscape(email), http.StatusFound)
}

// HandleAuthCheck reports whether tokens are on file for the given email.
func (h *Handlers) HandleAuthCheck(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.BadRequest(w, "email is required")
		return
	}

	ok, err := h.auth.IsAuthenticated(r.Context(), email)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !ok {
		httputil.OK(w, map[string]any{"authenticated": false})
		return
	}
	httputil.OK(w, map[string]any{"authenticated": true, "email": email})
}
