package probe

import (
	"encoding/json"
	"net/http"
)

// AppleSuccessBody is matched literally by Apple's captive network
// assistant. Do not reformat it.
const AppleSuccessBody = `<HTML><HEAD><TITLE>Success</TITLE></HEAD><BODY>Success</BODY></HTML>`

// CaptiveContentType is the RFC 8908 media type for the API response.
const CaptiveContentType = "application/captive+json"

// PortalPath is the human-facing portal UI path portalURL points at.
const PortalPath = "/portal"

// Response is the exact wire answer for one classified probe.
type Response struct {
	Status      int
	ContentType string
	Location    string
	Body        []byte
}

// apiPayload is the RFC 8908 response body.
type apiPayload struct {
	Captive       bool   `json:"captive"`
	UserPortalURL string `json:"user-portal-url"`
}

// PortalURL builds http://<host>/portal. The Host header is used verbatim
// when present so the portal stays reachable on whatever hostname or IP
// the client actually hit; fallbackHost covers clients that omit it.
func PortalURL(hostHeader, fallbackHost string) string {
	host := hostHeader
	if host == "" {
		host = fallbackHost
	}
	return "http://" + host + PortalPath
}

// Generate produces the status, headers and body mandated by the given
// protocol for a client in the given acceptance state. Class None is not
// a probe and has no generated response. The caller must write the
// response with a no-store cache directive; stale captive answers are a
// correctness bug.
func Generate(class Class, accepted bool, portalURL string) Response {
	switch class {
	case StandardAPI:
		body, _ := json.Marshal(apiPayload{
			Captive:       !accepted,
			UserPortalURL: portalURL,
		})
		return Response{
			Status:      http.StatusOK,
			ContentType: CaptiveContentType,
			Body:        body,
		}

	case ApplePresence:
		if accepted {
			return Response{
				Status:      http.StatusOK,
				ContentType: "text/html",
				Body:        []byte(AppleSuccessBody),
			}
		}
		return Response{Status: http.StatusFound, Location: portalURL}

	case NullBodyProbe, GenericRedirectProbe:
		if accepted {
			return Response{Status: http.StatusNoContent}
		}
		return Response{Status: http.StatusFound, Location: portalURL}
	}

	return Response{Status: http.StatusNotFound}
}

// Write sends resp and stamps the cache-prevention header every core
// response must carry.
func (r Response) Write(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	if r.ContentType != "" {
		w.Header().Set("Content-Type", r.ContentType)
	}
	if r.Location != "" {
		w.Header().Set("Location", r.Location)
	}
	w.WriteHeader(r.Status)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}
