package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

// memoryStore is an in-memory EventStore; failures is the number of initial
// AppendOpenEvent calls that return an error.
type memoryStore struct {
	mu       sync.Mutex
	events   []domain.OpenEvent
	failures int
}

func (s *memoryStore) AppendOpenEvent(ctx context.Context, evt *domain.OpenEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	evt.ID = int64(len(s.events) + 1)
	s.events = append(s.events, *evt)
	return nil
}

func (s *memoryStore) all() []domain.OpenEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OpenEvent(nil), s.events...)
}

func TestPublisher_EnqueuesEvent(t *testing.T) {
	client := newTestRedis(t)
	pub := NewPublisher(client)

	evt := domain.OpenEvent{
		TrackingID: "track_1700000000000_abc123def",
		ObservedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Device:     domain.DeviceMobile,
	}
	pub.Publish(context.Background(), evt)

	// Publish pushes on its own goroutine.
	require.Eventually(t, func() bool {
		n, err := client.LLen(context.Background(), QueueKey).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	raw, err := client.RPop(context.Background(), QueueKey).Result()
	require.NoError(t, err)

	var got domain.OpenEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, evt.TrackingID, got.TrackingID)
	assert.Equal(t, evt.Device, got.Device)
	assert.True(t, got.ObservedAt.Equal(evt.ObservedAt))
}

func TestConsumer_PersistsEvents(t *testing.T) {
	client := newTestRedis(t)
	store := &memoryStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(client, store)
	consumer.Start(ctx)
	defer consumer.Stop()

	evt := domain.OpenEvent{
		TrackingID: "track_1700000000000_abc123def",
		ObservedAt: time.Now().UTC(),
		Device:     domain.DeviceDesktop,
	}
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, client.LPush(ctx, QueueKey, body).Err())

	require.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	got := store.all()[0]
	assert.Equal(t, evt.TrackingID, got.TrackingID)
	assert.NotZero(t, got.ID, "store assigns the log id")
}

func TestConsumer_DropsMalformedPayload(t *testing.T) {
	client := newTestRedis(t)
	store := &memoryStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(client, store)
	consumer.Start(ctx)
	defer consumer.Stop()

	require.NoError(t, client.LPush(ctx, QueueKey, "{not json").Err())

	good, err := json.Marshal(domain.OpenEvent{TrackingID: "track_2_x", ObservedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, client.LPush(ctx, QueueKey, good).Err())

	require.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "track_2_x", store.all()[0].TrackingID)
}

func TestConsumer_RequeuesOnStoreFailure(t *testing.T) {
	client := newTestRedis(t)
	store := &memoryStore{failures: 1}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(client, store)
	consumer.Start(ctx)
	defer consumer.Stop()

	evt := domain.OpenEvent{TrackingID: "track_3_y", ObservedAt: time.Now().UTC()}
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, client.LPush(ctx, QueueKey, body).Err())

	// First append fails and the message is requeued; the retry succeeds.
	require.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "track_3_y", store.all()[0].TrackingID)
}
