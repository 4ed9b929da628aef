package registry

import (
	"context"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// Repository defines the data access contract for sent messages and their
// open events. Implementations must be safe for concurrent use.
type Repository interface {
	// UpsertSentMessage inserts or refreshes a message keyed by tracking id.
	// The upsert only tolerates duplicate send reports: on conflict, a field
	// already holding a non-empty value is kept and the original sent_at is
	// preserved (first non-empty wins).
	UpsertSentMessage(ctx context.Context, msg *domain.SentMessage) error

	// ListSentMessages returns all messages for an owner, newest sent first.
	ListSentMessages(ctx context.Context, owner string) ([]domain.SentMessage, error)

	// OpenEvents returns the full event log for a tracking id ordered by
	// observed_at ascending, insertion order breaking ties. A tracking id
	// with no events returns an empty slice, not an error.
	OpenEvents(ctx context.Context, trackingID string) ([]domain.OpenEvent, error)
}
