package tracking

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

// PixelGIF is the 1x1 transparent GIF served for every tracked open.
// Strict mail clients validate image responses, so these bytes must never
// change and must be returned even when event persistence fails.
var PixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the public pixel endpoint. It is the only untrusted-network
// facing piece of the tracking core: everything it reads from the request is
// attacker-controllable and treated as advisory.
type Handler struct {
	sink EventSink
	now  func() time.Time
}

// NewHandler creates a pixel handler publishing to the given sink.
func NewHandler(sink EventSink) *Handler {
	return &Handler{sink: sink, now: time.Now}
}

// Routes returns the public tracking routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/open", h.HandleOpen)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandleOpen records one pixel fetch and serves the pixel. A missing id is
// the only validation failure; every other path returns the image, because
// the tracking mechanism must never visibly break the email being viewed.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	ua := r.UserAgent()
	ip := RealIP(r)

	evt := domain.OpenEvent{
		TrackingID: id,
		ObservedAt: h.now().UTC(),
		Device:     DetectDevice(ua),
		Browser:    DetectBrowser(ua),
		OS:         DetectOS(ua),
		IPAddress:  ip,
		IsProxy:    IsProxyFetch(ua, ip),
	}
	h.sink.Publish(r.Context(), evt)

	logger.Info("open", "tracking_id", id, "device", string(evt.Device), "proxy", evt.IsProxy)
	h.servePixel(w)
}

// HandleHealth is a liveness probe for the standalone tracking binary.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(PixelGIF)
}
