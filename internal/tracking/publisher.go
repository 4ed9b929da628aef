package tracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

// QueueKey is the redis list the pixel handler pushes open events onto and
// the consumer drains.
const QueueKey = "mailed:open_events"

// EventSink accepts open events from the pixel handler. Implementations must
// never block the caller beyond a short bound and must swallow their own
// failures: a broken sink is an availability problem, not the mail client's.
type EventSink interface {
	Publish(ctx context.Context, evt domain.OpenEvent)
}

// Publisher pushes open events onto a redis list for asynchronous
// persistence. Publish returns immediately; the actual push happens on its
// own goroutine with a bounded timeout so a slow redis can never hold up
// pixel delivery.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a redis-backed event publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues one open event, fire-and-forget.
func (p *Publisher) Publish(ctx context.Context, evt domain.OpenEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Error("marshal open event", "err", err, "tracking_id", evt.TrackingID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.client.LPush(ctx, QueueKey, body).Err(); err != nil {
			logger.Error("publish open event", "err", err, "tracking_id", evt.TrackingID)
		}
	}()
}
