package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captive-responder-go/internal/acceptance"
	"captive-responder-go/internal/config"
	"captive-responder-go/internal/events"
	httpapi "captive-responder-go/internal/http"
	"captive-responder-go/internal/metrics"
)

func newTestServer(t *testing.T, trustForwarded bool) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Responder.ExternalHost = "10.9.8.7:8000"
	cfg.Responder.TrustForwarded = trustForwarded
	cfg.Responder.WebRoot = t.TempDir()
	cfg.Metrics.Enabled = true

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	disp := events.NewDispatcher(logger)
	t.Cleanup(disp.Close)

	srv := httpapi.New(cfg, logger, acceptance.NewMemoryStore(0), disp, metrics.New())
	return srv.Router()
}

func do(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestStandardAPI_CaptiveBeforeAccept(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodGet, "http://portal.example/.well-known/captive-portal", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/captive+json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["captive"])
	assert.Equal(t, "http://portal.example/portal", payload["user-portal-url"])
}

func TestStandardAPI_HostFallback(t *testing.T) {
	h := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/captive-portal", nil)
	req.Host = ""
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "http://10.9.8.7:8000/portal", payload["user-portal-url"])
}

func TestAcceptFlow(t *testing.T) {
	h := newTestServer(t, false)

	// captive: every probe family redirects to the portal
	for _, path := range []string{"/hotspot-detect.html", "/generate_204", "/ncsi.txt"} {
		rr := do(h, http.MethodGet, "http://portal.example"+path, "")
		require.Equal(t, http.StatusFound, rr.Code, "path %s", path)
		assert.Equal(t, "http://portal.example/portal", rr.Header().Get("Location"))
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	}

	rr := do(h, http.MethodPost, "http://portal.example/accept", `{"fingerprint":"device-42"}`)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Empty(t, rr.Body.String())

	// accepted: Apple gets its literal success page
	rr = do(h, http.MethodGet, "http://portal.example/hotspot-detect.html", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t,
		`<HTML><HEAD><TITLE>Success</TITLE></HEAD><BODY>Success</BODY></HTML>`,
		rr.Body.String())

	// accepted: null-body and redirect probes both go 204 empty
	for _, path := range []string{"/generate_204", "/ncsi.txt"} {
		rr = do(h, http.MethodGet, "http://portal.example"+path, "")
		require.Equal(t, http.StatusNoContent, rr.Code, "path %s", path)
		assert.Empty(t, rr.Body.String())
	}

	// accepted: the API flips captive to false
	rr = do(h, http.MethodGet, "http://portal.example/.well-known/captive-portal", "")
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["captive"])
}

func TestAcceptWithMalformedBody(t *testing.T) {
	h := newTestServer(t, false)

	// malformed payload is non-fatal: accept proceeds without fingerprint
	rr := do(h, http.MethodPost, "/accept", `{not json`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(h, http.MethodGet, "/generate_204", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAcceptWithoutBody(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodPost, "/accept", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(h, http.MethodGet, "/generate_204", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestProbeOnInterceptedDomain(t *testing.T) {
	h := newTestServer(t, false)

	// DNS interception points a vendor connectivity domain here; the
	// substring rules still classify the probe
	rr := do(h, http.MethodGet, "http://connectivitycheck.gstatic.com/mobile/generate_204", "")
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "http://connectivitycheck.gstatic.com/portal", rr.Header().Get("Location"))
}

func TestForwardedIdentity(t *testing.T) {
	h := newTestServer(t, true)

	accept := httptest.NewRequest(http.MethodPost, "/accept", nil)
	accept.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, accept)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// same forwarded client is recognized
	probeReq := httptest.NewRequest(http.MethodGet, "/generate_204", nil)
	probeReq.Header.Set("X-Forwarded-For", "203.0.113.9")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, probeReq)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// a different forwarded client is still captive
	otherReq := httptest.NewRequest(http.MethodGet, "/generate_204", nil)
	otherReq.Header.Set("X-Forwarded-For", "203.0.113.200")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, otherReq)
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestRootRedirectsToPortal(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/portal", rr.Header().Get("Location"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestPortalPageMissingAsset(t *testing.T) {
	h := newTestServer(t, false)

	// web root is an empty temp dir, so the collaborator boundary 404s
	rr := do(h, http.MethodGet, "/portal", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, true, payload["store_ping"])
}

func TestUnknownPathFallsThrough(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodGet, "/no-such-asset.css", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProbeIgnoresNonGetMethods(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(h, http.MethodPost, "/generate_204", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
