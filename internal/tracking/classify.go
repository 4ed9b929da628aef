package tracking

import (
	"net"
	"net/http"
	"strings"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// DetectDevice buckets a User-Agent into exactly one of desktop/mobile/tablet.
// Ambiguous or empty agents fall back to desktop; an arbitrary string never
// passes through.
func DetectDevice(userAgent string) domain.DeviceClass {
	ua := strings.ToLower(userAgent)
	// Tablet checks first: iPad and Android tablets also match broader
	// mobile signatures.
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return domain.DeviceTablet
	}
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		return domain.DeviceMobile
	}
	return domain.DeviceDesktop
}

// browserSignatures maps User-Agent substrings to display labels, checked in
// order. Chrome must come after Edge/Opera because their agents embed "chrome".
var browserSignatures = []struct{ marker, label string }{
	{"edg/", "Edge"},
	{"opr/", "Opera"},
	{"firefox", "Firefox"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

var osSignatures = []struct{ marker, label string }{
	{"windows", "Windows"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"mac os", "macOS"},
	{"macintosh", "macOS"},
	{"cros", "ChromeOS"},
	{"linux", "Linux"},
}

// DetectBrowser returns a best-effort browser label, or "" when unknown.
func DetectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, s := range browserSignatures {
		if strings.Contains(ua, s.marker) {
			return s.label
		}
	}
	return ""
}

// DetectOS returns a best-effort operating system label, or "" when unknown.
func DetectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, s := range osSignatures {
		if strings.Contains(ua, s.marker) {
			return s.label
		}
	}
	return ""
}

// proxyMarkers are User-Agent substrings identifying mail-provider image
// proxies (Gmail fetches every image through GoogleImageProxy before the
// recipient sees it).
var proxyMarkers = []string{
	"googleimageproxy",
	"ggpht.com",
	"yahoocachesystem",
	"outlookimgsafe",
}

// proxyNets are source ranges used by Google's image-fetching infrastructure.
var proxyNets = mustParseCIDRs(
	"66.102.0.0/20",
	"66.249.80.0/20",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("tracking: bad proxy CIDR " + c)
		}
		nets = append(nets, n)
	}
	return nets
}

// IsProxyFetch reports whether a pixel fetch looks like an automated
// mail-provider proxy rather than the recipient's own client. The flag is
// advisory metadata: the event is recorded either way, and the aggregation
// engine does not consult it for counting.
func IsProxyFetch(userAgent, sourceAddr string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range proxyMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(sourceAddr)); ip != nil {
		for _, n := range proxyNets {
			if n.Contains(ip) {
				return true
			}
		}
	}
	return false
}

// RealIP extracts the client source address, preferring proxy headers.
// Both headers are attacker-controllable; the value is a location proxy,
// not an identity.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
