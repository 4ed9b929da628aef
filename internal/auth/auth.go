// Package auth handles the Google OAuth code exchange for Gmail access and
// the persistence of per-user tokens. Session security is out of scope: the
// dashboard identifies itself by email, and this package only guarantees
// that stored tokens belong to the user who completed consent.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/divyanshkhurana06/mailed0/internal/config"
	"github.com/divyanshkhurana06/mailed0/internal/repository/postgres"
)

// gmailScopes is the consent we request: read-only mail plus identity.
var gmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// TokenStore persists exchanged tokens keyed by user email.
type TokenStore interface {
	SaveUserTokens(ctx context.Context, u *postgres.UserTokens) error
	GetUserTokens(ctx context.Context, email string) (*postgres.UserTokens, error)
}

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Manager drives the OAuth flow with Google.
type Manager struct {
	oauthCfg    *oauth2.Config
	store       TokenStore
	client      *http.Client
	userinfoURL string
}

// NewManager creates an auth manager from Google credentials.
func NewManager(cfg config.GoogleConfig, store TokenStore) *Manager {
	return &Manager{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       gmailScopes,
			Endpoint:     google.Endpoint,
		},
		store:       store,
		client:      &http.Client{Timeout: 15 * time.Second},
		userinfoURL: userinfoURL,
	}
}

// ConsentURL returns the Google consent page URL. Offline access with forced
// consent so we always receive a refresh token. The state value is a fresh
// UUID; callers that keep a session can round-trip it for CSRF protection.
func (m *Manager) ConsentURL() (url, state string) {
	state = uuid.New().String()
	url = m.oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	return url, state
}

// Exchange trades an authorization code for tokens, resolves the user's
// email, and persists the tokens. Returns the authenticated email.
func (m *Manager) Exchange(ctx context.Context, code string) (string, error) {
	token, err := m.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}

	email, err := m.lookupEmail(ctx, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	err = m.store.SaveUserTokens(ctx, &postgres.UserTokens{
		Email:        email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	})
	if err != nil {
		return "", err
	}
	return email, nil
}

// IsAuthenticated reports whether tokens are on file for the email.
func (m *Manager) IsAuthenticated(ctx context.Context, email string) (bool, error) {
	u, err := m.store.GetUserTokens(ctx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// TokenSource returns an auto-refreshing token source for the user, or an
// error if they never authenticated. Refreshed tokens are written back so
// the stored credential stays current.
func (m *Manager) TokenSource(ctx context.Context, email string) (oauth2.TokenSource, error) {
	u, err := m.store.GetUserTokens(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s not authenticated", email)
	}

	base := m.oauthCfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		Expiry:       u.TokenExpiry,
	})
	return &savingTokenSource{ctx: ctx, email: email, base: base, store: m.store}, nil
}

type savingTokenSource struct {
	ctx   context.Context
	email string
	base  oauth2.TokenSource
	store TokenStore
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort write-back; a failed save only costs an extra refresh.
	_ = s.store.SaveUserTokens(s.ctx, &postgres.UserTokens{
		Email:        s.email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	})
	return token, nil
}

func (m *Manager) lookupEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userinfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo missing email")
	}
	return info.Email, nil
}
