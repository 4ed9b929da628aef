package tracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

// EventStore persists open events. The postgres implementation lives in
// repository/postgres.
type EventStore interface {
	AppendOpenEvent(ctx context.Context, evt *domain.OpenEvent) error
}

// Consumer drains the open-event queue and appends each event to the store.
// Append failures are retried by leaving the event at the tail of the queue;
// malformed payloads are dropped.
type Consumer struct {
	client *redis.Client
	store  EventStore
	done   chan struct{}
}

// NewConsumer creates a queue consumer writing to the given store.
func NewConsumer(client *redis.Client, store EventStore) *Consumer {
	return &Consumer{
		client: client,
		store:  store,
		done:   make(chan struct{}),
	}
}

// Start begins draining the queue on a background goroutine.
func (c *Consumer) Start(ctx context.Context) {
	logger.Info("open-event consumer started", "queue", QueueKey)
	go c.poll(ctx)
}

// Stop signals the polling loop to exit.
func (c *Consumer) Stop() {
	close(c.done)
}

func (c *Consumer) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		res, err := c.client.BRPop(ctx, 5*time.Second, QueueKey).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty
			}
			if ctx.Err() != nil {
				return
			}
			logger.Error("queue receive", "err", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		c.process(ctx, []byte(res[1]))
	}
}

func (c *Consumer) process(ctx context.Context, body []byte) {
	var evt domain.OpenEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		logger.Warn("queue bad message dropped", "err", err)
		return
	}

	if err := c.store.AppendOpenEvent(ctx, &evt); err != nil {
		logger.Error("append open event", "err", err, "tracking_id", evt.TrackingID)
		// Requeue at the tail so the event is not lost on a transient
		// store failure. Duplicates are acceptable: the log is
		// append-only and carries no uniqueness constraint.
		if pushErr := c.client.LPush(ctx, QueueKey, body).Err(); pushErr != nil {
			logger.Error("requeue open event", "err", pushErr, "tracking_id", evt.TrackingID)
		}
		time.Sleep(time.Second)
		return
	}

	logger.Debug("open event persisted", "tracking_id", evt.TrackingID, "device", string(evt.Device), "proxy", evt.IsProxy)
}
