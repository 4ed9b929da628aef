// Package analytics folds the raw open-event log for a tracking id into an
// engagement snapshot.
//
// The interesting rule is first-event suppression: Gmail's image proxy fetches
// every pixel once before the recipient ever sees the message, so the
// chronologically earliest event is discarded unconditionally before counting.
// The proxy-classification flag on each event is recorded and surfaced, but
// deliberately not consulted for counting; changing that would silently shift
// historical open counts.
//
// Everything here is pure: same event log in, byte-identical snapshot out.
package analytics
