package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

func evt(id int64, at time.Time, device domain.DeviceClass, ip string, proxy bool) domain.OpenEvent {
	return domain.OpenEvent{
		ID:         id,
		TrackingID: "track_1700000000000_abc123def",
		ObservedAt: at,
		Device:     device,
		IPAddress:  ip,
		IsProxy:    proxy,
	}
}

func TestComputeSnapshot_Empty(t *testing.T) {
	snap := ComputeSnapshot(nil)

	assert.Equal(t, 0, snap.Opens)
	assert.Nil(t, snap.LastOpened)
	assert.Empty(t, snap.Devices)
	assert.Empty(t, snap.Locations)
	assert.Empty(t, snap.OpenHistory)
}

func TestComputeSnapshot_SingleEventSuppressed(t *testing.T) {
	// One fetch is indistinguishable from the sender's own proxy prefetch
	// and must not count as an open, even when it is not flagged as proxy.
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceMobile, "1.2.3.4", false),
	})

	assert.Equal(t, 0, snap.Opens)
	assert.Nil(t, snap.LastOpened)
	assert.Empty(t, snap.Devices)
	assert.Empty(t, snap.OpenHistory)
}

func TestComputeSnapshot_DropsEarliestOnly(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(5 * time.Minute)
	t2 := t0.Add(30 * time.Minute)

	// Scenario: proxy prefetch at t0, then two real opens.
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "66.102.0.9", true),
		evt(2, t1, domain.DeviceMobile, "10.0.0.1", false),
		evt(3, t2, domain.DeviceMobile, "10.0.0.1", false),
	})

	assert.Equal(t, 2, snap.Opens)
	require.NotNil(t, snap.LastOpened)
	assert.True(t, snap.LastOpened.Equal(t2))

	require.Len(t, snap.OpenHistory, 2)
	assert.True(t, snap.OpenHistory[0].Timestamp.Equal(t1))
	assert.True(t, snap.OpenHistory[1].Timestamp.Equal(t2))

	assert.Equal(t, []domain.HistogramBucket{{Key: "mobile", Count: 2}}, snap.Devices)
	assert.Equal(t, []domain.HistogramBucket{{Key: "10.0.0.1", Count: 2}}, snap.Locations)
}

func TestComputeSnapshot_SuppressionIgnoresProxyFlag(t *testing.T) {
	// The earliest event is dropped even when it is a genuine (non-proxy)
	// open and a later event IS flagged as proxy. Suppression is purely
	// chronological.
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "10.0.0.1", false),
		evt(2, t0.Add(time.Minute), domain.DeviceDesktop, "66.102.0.9", true),
	})

	assert.Equal(t, 1, snap.Opens)
	require.Len(t, snap.OpenHistory, 1)
	assert.True(t, snap.OpenHistory[0].IsProxy)
}

func TestComputeSnapshot_UnorderedInput(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []domain.OpenEvent{
		evt(3, t0.Add(2*time.Hour), domain.DeviceTablet, "", false),
		evt(1, t0, domain.DeviceDesktop, "", false),
		evt(2, t0.Add(time.Hour), domain.DeviceMobile, "", false),
	}

	snap := ComputeSnapshot(events)

	// The chronologically earliest event (t0, desktop) is the one dropped,
	// regardless of slice position.
	assert.Equal(t, 2, snap.Opens)
	require.Len(t, snap.OpenHistory, 2)
	assert.Equal(t, domain.DeviceMobile, snap.OpenHistory[0].Device)
	assert.Equal(t, domain.DeviceTablet, snap.OpenHistory[1].Device)

	// Input slice must not be reordered.
	assert.Equal(t, int64(3), events[0].ID)
}

func TestComputeSnapshot_TimestampTiesKeepInsertionOrder(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "a", false),
		evt(2, t0, domain.DeviceMobile, "b", false),
		evt(3, t0, domain.DeviceTablet, "c", false),
	})

	// Stable sort: the first inserted event is suppressed, the rest keep
	// their order.
	assert.Equal(t, 2, snap.Opens)
	require.Len(t, snap.OpenHistory, 2)
	assert.Equal(t, domain.DeviceMobile, snap.OpenHistory[0].Device)
	assert.Equal(t, domain.DeviceTablet, snap.OpenHistory[1].Device)
}

func TestComputeSnapshot_HistogramOrdering(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "", false), // suppressed
		evt(2, t0.Add(1*time.Minute), domain.DeviceMobile, "", false),
		evt(3, t0.Add(2*time.Minute), domain.DeviceDesktop, "", false),
		evt(4, t0.Add(3*time.Minute), domain.DeviceTablet, "", false),
		evt(5, t0.Add(4*time.Minute), domain.DeviceDesktop, "", false),
		evt(6, t0.Add(5*time.Minute), domain.DeviceTablet, "", false),
	})

	// Count descending, key ascending on ties.
	assert.Equal(t, []domain.HistogramBucket{
		{Key: "desktop", Count: 2},
		{Key: "tablet", Count: 2},
		{Key: "mobile", Count: 1},
	}, snap.Devices)
}

func TestComputeSnapshot_BlankLocationOmitted(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot([]domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "", false),
		evt(2, t0.Add(time.Minute), domain.DeviceDesktop, "", false),
		evt(3, t0.Add(2*time.Minute), domain.DeviceDesktop, "8.8.8.8", false),
	})

	assert.Equal(t, []domain.HistogramBucket{{Key: "8.8.8.8", Count: 1}}, snap.Locations)
}

func TestComputeSnapshot_Deterministic(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []domain.OpenEvent{
		evt(1, t0, domain.DeviceDesktop, "1.1.1.1", true),
		evt(2, t0.Add(time.Minute), domain.DeviceMobile, "2.2.2.2", false),
		evt(3, t0.Add(2*time.Minute), domain.DeviceTablet, "2.2.2.2", false),
		evt(4, t0.Add(3*time.Minute), domain.DeviceMobile, "3.3.3.3", false),
	}

	first, err := json.Marshal(ComputeSnapshot(events))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := json.Marshal(ComputeSnapshot(events))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
