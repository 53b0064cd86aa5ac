package httpapi

import (
	"net/http"
	"time"

	"captive-responder-go/internal/events"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// requestLog emits one structured log line per request and, for GETs, a
// copy of the observation to the event sinks. Publishing is
// fire-and-forget: it happens after the response is written and can
// neither delay nor fail it.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		ms := time.Since(start).Milliseconds()
		key := s.resolver.Resolve(r.Header, r.RemoteAddr)

		fields := logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"ms":         ms,
			"client_key": key,
			"ua":         r.UserAgent(),
		}
		if ww.Status() >= 400 {
			s.logger.WithFields(fields).Error("request failed")
		} else {
			s.logger.WithFields(fields).Info("request")
		}

		if r.Method == http.MethodGet {
			s.events.Publish(events.Event{
				Event:        events.EventRequest,
				ClientKey:    key,
				ForwardedKey: forwardedKey(r),
				Method:       r.Method,
				Path:         r.URL.Path,
				Host:         r.Host,
				UserAgent:    r.UserAgent(),
				Status:       ww.Status(),
				DurationMS:   ms,
			})
		}
	})
}
