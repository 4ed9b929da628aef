package domain

import "time"

// DeviceClass enumerates the device buckets an open event is classified into.
// Classification is total: an unknown or empty User-Agent maps to DeviceDesktop.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

// OpenEvent is one recorded fetch of a tracking pixel. Events are append-only;
// multiple events per tracking id are expected and legitimate. ObservedAt is
// assigned server-side at receipt and is the authoritative ordering key.
type OpenEvent struct {
	ID         int64       `json:"-"`
	TrackingID string      `json:"tracking_id"`
	ObservedAt time.Time   `json:"observed_at"`
	Device     DeviceClass `json:"device"`
	Browser    string      `json:"browser,omitempty"`
	OS         string      `json:"os,omitempty"`
	IPAddress  string      `json:"ip_address,omitempty"`
	IsProxy    bool        `json:"is_proxy"`
}

// SentMessage links a tracking id to the logical message it was attached to.
// Created once at send-confirmation time; the upsert keyed by TrackingID only
// tolerates duplicate reports, it never changes semantic content.
type SentMessage struct {
	TrackingID string    `json:"tracking_id"`
	UserEmail  string    `json:"user_email"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// OpenRecord is the projection of an OpenEvent exposed in analytics output.
type OpenRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Device    DeviceClass `json:"device"`
	Browser   string      `json:"browser,omitempty"`
	OS        string      `json:"os,omitempty"`
	Location  string      `json:"location,omitempty"`
	IsProxy   bool        `json:"is_proxy"`
}

// HistogramBucket is one entry of a device or location breakdown. Buckets are
// emitted as a sorted slice, not a map, so a snapshot serializes identically
// on every recomputation.
type HistogramBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AnalyticsSnapshot is the derived engagement view for one sent message.
// It is computed fresh per read and never stored.
type AnalyticsSnapshot struct {
	Opens       int               `json:"opens"`
	LastOpened  *time.Time        `json:"last_opened"`
	Devices     []HistogramBucket `json:"devices"`
	Locations   []HistogramBucket `json:"locations"`
	OpenHistory []OpenRecord      `json:"open_history"`
}
