package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// OpenEventRepo persists the append-only open-event log.
type OpenEventRepo struct{ db *sql.DB }

// NewOpenEventRepo creates a Postgres-backed open-event repository.
func NewOpenEventRepo(db *sql.DB) *OpenEventRepo { return &OpenEventRepo{db: db} }

// AppendOpenEvent inserts one event. There is deliberately no uniqueness
// constraint on tracking_id: concurrent fetches for the same id must both
// persist as distinct records.
func (r *OpenEventRepo) AppendOpenEvent(ctx context.Context, evt *domain.OpenEvent) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO open_events (tracking_id, observed_at, device_type, browser, os, ip_address, is_proxy)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, evt.TrackingID, evt.ObservedAt, string(evt.Device), evt.Browser, evt.OS, evt.IPAddress, evt.IsProxy).Scan(&evt.ID)
	if err != nil {
		return fmt.Errorf("append open event: %w", err)
	}
	return nil
}

// OpenEvents returns the full log for a tracking id. Ordering by observed_at
// with the serial pk as tiebreak gives the monotonic event-log invariant the
// aggregation engine relies on.
func (r *OpenEventRepo) OpenEvents(ctx context.Context, trackingID string) ([]domain.OpenEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tracking_id, observed_at, device_type, COALESCE(browser,''), COALESCE(os,''), COALESCE(ip_address,''), is_proxy
		FROM open_events
		WHERE tracking_id = $1
		ORDER BY observed_at ASC, id ASC
	`, trackingID)
	if err != nil {
		return nil, fmt.Errorf("query open events: %w", err)
	}
	defer rows.Close()

	events := []domain.OpenEvent{}
	for rows.Next() {
		var evt domain.OpenEvent
		var device string
		if err := rows.Scan(&evt.ID, &evt.TrackingID, &evt.ObservedAt, &device,
			&evt.Browser, &evt.OS, &evt.IPAddress, &evt.IsProxy); err != nil {
			return nil, fmt.Errorf("scan open event: %w", err)
		}
		evt.Device = domain.DeviceClass(device)
		events = append(events, evt)
	}
	return events, rows.Err()
}
