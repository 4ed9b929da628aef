package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UserRepo persists per-user OAuth tokens for the mail-provider API.
type UserRepo struct{ db *sql.DB }

// NewUserRepo creates a Postgres-backed user repository.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// UserTokens is one user's stored OAuth credential set.
type UserTokens struct {
	Email        string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
}

// SaveUserTokens upserts a user's tokens keyed by email. Unlike the
// sent-message upsert this is last-write-wins: a fresh token always replaces
// a stale one.
func (r *UserRepo) SaveUserTokens(ctx context.Context, u *UserTokens) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, access_token, refresh_token, token_expiry, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), users.refresh_token),
			token_expiry  = EXCLUDED.token_expiry,
			updated_at    = NOW()
	`, u.Email, u.AccessToken, u.RefreshToken, u.TokenExpiry)
	if err != nil {
		return fmt.Errorf("save user tokens: %w", err)
	}
	return nil
}

// GetUserTokens returns a user's tokens, or (nil, nil) when the user has
// never authenticated.
func (r *UserRepo) GetUserTokens(ctx context.Context, email string) (*UserTokens, error) {
	u := &UserTokens{}
	err := r.db.QueryRowContext(ctx, `
		SELECT email, access_token, COALESCE(refresh_token,''), token_expiry
		FROM users
		WHERE email = $1
	`, email).Scan(&u.Email, &u.AccessToken, &u.RefreshToken, &u.TokenExpiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user tokens: %w", err)
	}
	return u, nil
}
