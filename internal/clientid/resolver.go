package clientid

import (
	"net"
	"net/http"
	"strings"
)

// Resolver derives a stable client key from an inbound request.
//
// The key is the first hop of X-Forwarded-For when the deployment trusts
// its reverse proxy, otherwise the transport-layer address of the
// connection. Clients behind the same NAT share a key; an unresolvable
// address degrades to the empty key, which all such clients share. Both
// are accepted limitations of address-based identity, resolved at the
// deployment level, not here.
type Resolver struct {
	TrustForwarded bool
}

// Resolve never fails and has no side effects.
func (rs Resolver) Resolve(header http.Header, remoteAddr string) string {
	if rs.TrustForwarded {
		if xff := header.Get("X-Forwarded-For"); xff != "" {
			// first hop is the original client
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// no port component, use the address as-is
		host = remoteAddr
	}
	return strings.TrimSpace(host)
}
