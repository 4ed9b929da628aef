package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/tracking"
)

type nopSink struct{}

func (nopSink) Publish(context.Context, domain.OpenEvent) {}

func TestSetupRoutes_PixelEndpoint(t *testing.T) {
	h := newTestHandlers(newStubRepo())
	pixel := tracking.NewHandler(nopSink{})
	router := SetupRoutes(h, pixel, "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/open?id=track_1_x")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
}

func TestSetupRoutes_PixelMissingID(t *testing.T) {
	h := newTestHandlers(newStubRepo())
	pixel := tracking.NewHandler(nopSink{})
	router := SetupRoutes(h, pixel, "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/open")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSetupRoutes_Health(t *testing.T) {
	h := newTestHandlers(newStubRepo())
	router := SetupRoutes(h, tracking.NewHandler(nopSink{}), "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetupRoutes_CORSPreflight(t *testing.T) {
	h := newTestHandlers(newStubRepo())
	router := SetupRoutes(h, tracking.NewHandler(nopSink{}), "https://app.example.com")

	srv := httptest.NewServer(router)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/emails/sent", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
