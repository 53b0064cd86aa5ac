package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"captive-responder-go/internal/acceptance"
	"captive-responder-go/internal/clientid"
	"captive-responder-go/internal/config"
	"captive-responder-go/internal/events"
	"captive-responder-go/internal/metrics"
	"captive-responder-go/internal/probe"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func New(cfg *config.Config, logger *logrus.Logger, st acceptance.Store, disp *events.Dispatcher, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		st:       st,
		resolver: clientid.Resolver{TrustForwarded: cfg.Responder.TrustForwarded},
		events:   disp,
		metrics:  m,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		err := s.st.Ping(r.Context())
		writeJSON(w, 200, map[string]any{
			"status":     "ok",
			"store_ping": err == nil,
		})
	})

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, probe.PortalPath, http.StatusFound)
	})

	r.Get(probe.PortalPath, s.portalPage)
	r.Post("/accept", s.accept)

	// The well-known API path and every OS probe path, including probes
	// aimed at DNS-intercepted third-party hostnames, land here.
	r.NotFound(s.probeOrStatic)

	return r
}

// probeOrStatic is the dispatch point for arbitrary inbound paths: it
// classifies the path and answers with the bit-exact probe response for
// the client's acceptance state, or falls through to static serving.
func (s *Server) probeOrStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	class := probe.Classify(r.URL.Path)
	if class == probe.None {
		s.static(w, r)
		return
	}

	key := s.resolver.Resolve(r.Header, r.RemoteAddr)
	accepted, _ := s.st.IsAccepted(r.Context(), key)

	resp := probe.Generate(class, accepted, s.portalURL(r))
	resp.Write(w)

	if s.metrics != nil {
		s.metrics.MarkResponse(class.String(), !accepted)
	}
}

func (s *Server) portalURL(r *http.Request) string {
	return probe.PortalURL(r.Host, s.cfg.Responder.ExternalHost)
}

// accept is the sole state-mutating entry point. A malformed or missing
// body is non-fatal: the accept proceeds with the fingerprint absent.
func (s *Server) accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	key := s.resolver.Resolve(r.Header, r.RemoteAddr)
	rec, err := s.st.Accept(r.Context(), key, req.Fingerprint)
	if err != nil {
		// store backends absorb contention; an error here is backend
		// unavailability, and the client still gets its acknowledgement
		s.logger.WithError(err).Warn("acceptance store write failed")
	}

	s.logger.WithFields(logrus.Fields{
		"client_key":  key,
		"fingerprint": rec.Fingerprint,
	}).Info("client accepted terms")

	if s.metrics != nil {
		s.metrics.MarkAccept()
	}
	s.events.Publish(events.Event{
		Event:        events.EventAccept,
		ClientKey:    key,
		ForwardedKey: forwardedKey(r),
		Method:       r.Method,
		Path:         r.URL.Path,
		Host:         r.Host,
		UserAgent:    r.UserAgent(),
		Status:       http.StatusNoContent,
		Fingerprint:  rec.Fingerprint,
	})

	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) portalPage(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.Responder.WebRoot, "index.html")
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "index.html not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

func (s *Server) static(w http.ResponseWriter, r *http.Request) {
	http.FileServer(http.Dir(s.cfg.Responder.WebRoot)).ServeHTTP(w, r)
}

func forwardedKey(r *http.Request) string {
	return clientid.Resolver{TrustForwarded: true}.Resolve(r.Header, "")
}
