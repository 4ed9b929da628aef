package analytics

import (
	"sort"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// ComputeSnapshot derives the engagement view for one tracking id from its
// full open-event log. Events may arrive in any order; the sort by ObservedAt
// (stable, so store insertion order breaks ties) is what imposes a
// deterministic order on a concurrently-written log.
//
// Zero events and exactly one event both produce a zero snapshot: a single
// fetch is indistinguishable from pure proxy noise and must not be reported
// as an open.
func ComputeSnapshot(events []domain.OpenEvent) domain.AnalyticsSnapshot {
	sorted := make([]domain.OpenEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.Before(sorted[j].ObservedAt)
	})

	// First-event suppression: drop the earliest fetch regardless of its
	// proxy flag.
	var valid []domain.OpenEvent
	if len(sorted) > 1 {
		valid = sorted[1:]
	}

	snap := domain.AnalyticsSnapshot{
		Opens:       len(valid),
		Devices:     []domain.HistogramBucket{},
		Locations:   []domain.HistogramBucket{},
		OpenHistory: make([]domain.OpenRecord, 0, len(valid)),
	}

	devices := map[string]int{}
	locations := map[string]int{}
	for _, evt := range valid {
		devices[string(evt.Device)]++
		if evt.IPAddress != "" {
			locations[evt.IPAddress]++
		}
		snap.OpenHistory = append(snap.OpenHistory, domain.OpenRecord{
			Timestamp: evt.ObservedAt,
			Device:    evt.Device,
			Browser:   evt.Browser,
			OS:        evt.OS,
			Location:  evt.IPAddress,
			IsProxy:   evt.IsProxy,
		})
	}

	if n := len(valid); n > 0 {
		last := valid[n-1].ObservedAt
		snap.LastOpened = &last
	}

	snap.Devices = histogram(devices)
	snap.Locations = histogram(locations)
	return snap
}

// histogram renders a count map as a sorted bucket slice so snapshots
// serialize identically on every recomputation.
func histogram(counts map[string]int) []domain.HistogramBucket {
	buckets := make([]domain.HistogramBucket, 0, len(counts))
	for k, v := range counts {
		buckets = append(buckets, domain.HistogramBucket{Key: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}
