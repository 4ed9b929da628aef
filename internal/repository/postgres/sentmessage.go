package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// SentMessageRepo persists the sent-email registry.
type SentMessageRepo struct{ db *sql.DB }

// NewSentMessageRepo creates a Postgres-backed sent-message repository.
func NewSentMessageRepo(db *sql.DB) *SentMessageRepo { return &SentMessageRepo{db: db} }

// UpsertSentMessage inserts a message or refreshes it on duplicate send
// reports. Conflict policy: first non-empty field wins — a later duplicate
// with a weaker payload never blanks recipient/subject/body, and the original
// sent_at is preserved.
func (r *SentMessageRepo) UpsertSentMessage(ctx context.Context, msg *domain.SentMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sent_messages (tracking_id, user_email, recipient, subject, body, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tracking_id) DO UPDATE SET
			user_email = COALESCE(NULLIF(sent_messages.user_email, ''), EXCLUDED.user_email),
			recipient  = COALESCE(NULLIF(sent_messages.recipient, ''), EXCLUDED.recipient),
			subject    = COALESCE(NULLIF(sent_messages.subject, ''), EXCLUDED.subject),
			body       = COALESCE(NULLIF(sent_messages.body, ''), EXCLUDED.body)
	`, msg.TrackingID, msg.UserEmail, msg.Recipient, msg.Subject, msg.Body, msg.SentAt)
	if err != nil {
		return fmt.Errorf("upsert sent message: %w", err)
	}
	return nil
}

// ListSentMessages returns all messages for an owner, newest sent first.
func (r *SentMessageRepo) ListSentMessages(ctx context.Context, owner string) ([]domain.SentMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tracking_id, user_email, recipient, subject, COALESCE(body,''), sent_at
		FROM sent_messages
		WHERE user_email = $1
		ORDER BY sent_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.SentMessage{}
	for rows.Next() {
		var m domain.SentMessage
		if err := rows.Scan(&m.TrackingID, &m.UserEmail, &m.Recipient, &m.Subject, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan sent message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
