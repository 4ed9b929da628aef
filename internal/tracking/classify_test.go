package tracking

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

const (
	uaChromeMac    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIPhoneSafari = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad         = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaAndroid      = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaGmailProxy   = "Mozilla/5.0 (Windows NT 5.1; rv:11.0) Gecko Firefox/11.0 (via ggpht.com GoogleImageProxy)"
	uaEdgeWin      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
)

func TestDetectDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceClass
	}{
		{"empty", "", domain.DeviceDesktop},
		{"garbage", "not a real agent", domain.DeviceDesktop},
		{"mac chrome", uaChromeMac, domain.DeviceDesktop},
		{"iphone", uaIPhoneSafari, domain.DeviceMobile},
		{"android phone", uaAndroid, domain.DeviceMobile},
		{"ipad beats mobile token", uaIPad, domain.DeviceTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700 Tablet) Chrome/120", domain.DeviceTablet},
		{"windows edge", uaEdgeWin, domain.DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDevice(tt.ua))
		})
	}
}

func TestDetectBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"chrome", uaChromeMac, "Chrome"},
		{"safari on iphone", uaIPhoneSafari, "Safari"},
		{"edge before chrome", uaEdgeWin, "Edge"},
		{"firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0", "Firefox"},
		{"opera before chrome", "Mozilla/5.0 Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0", "Opera"},
		{"unknown", "curl/8.4.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBrowser(tt.ua))
		})
	}
}

func TestDetectOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"macos", uaChromeMac, "macOS"},
		{"windows", uaEdgeWin, "Windows"},
		{"ios iphone", uaIPhoneSafari, "iOS"},
		{"ios ipad", uaIPad, "iOS"},
		{"android", uaAndroid, "Android"},
		{"linux", "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0", "Linux"},
		{"unknown", "curl/8.4.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOS(tt.ua))
		})
	}
}

func TestIsProxyFetch(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		addr string
		want bool
	}{
		{"gmail image proxy ua", uaGmailProxy, "10.0.0.1", true},
		{"yahoo cache ua", "YahooCacheSystem; guzzlehttp", "10.0.0.1", true},
		{"google fetch range", uaChromeMac, "66.102.0.45", true},
		{"google crawl range", uaChromeMac, "66.249.84.10", true},
		{"plain client", uaChromeMac, "203.0.113.9", false},
		{"empty addr", uaChromeMac, "", false},
		{"unparseable addr", uaChromeMac, "not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProxyFetch(tt.ua, tt.addr))
		})
	}
}

func TestRealIP(t *testing.T) {
	t.Run("x-forwarded-for first hop", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/open?id=x", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		assert.Equal(t, "203.0.113.9", RealIP(r))
	})

	t.Run("x-real-ip fallback", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/open?id=x", nil)
		r.Header.Set("X-Real-Ip", "198.51.100.7")
		assert.Equal(t, "198.51.100.7", RealIP(r))
	})

	t.Run("remote addr strips port", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/open?id=x", nil)
		r.RemoteAddr = "192.0.2.44:54321"
		assert.Equal(t, "192.0.2.44", RealIP(r))
	})
}
