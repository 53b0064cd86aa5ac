package probe

import "strings"

// Class identifies which captive-portal detection protocol an inbound
// request is speaking.
type Class int

const (
	// None means no probe protocol matched; the request falls through to
	// the portal UI or static asset serving.
	None Class = iota

	// StandardAPI is the RFC 8908 well-known captive portal API.
	StandardAPI

	// ApplePresence is the hotspot-detect probe used by iOS and macOS.
	ApplePresence

	// NullBodyProbe covers the Android generate_204 family and
	// NetworkManager connectivity checks, which expect an empty 204.
	NullBodyProbe

	// GenericRedirectProbe covers text-file checks such as Windows NCSI,
	// which only care whether the response was intercepted.
	GenericRedirectProbe
)

func (c Class) String() string {
	switch c {
	case StandardAPI:
		return "standard_api"
	case ApplePresence:
		return "apple_presence"
	case NullBodyProbe:
		return "null_body"
	case GenericRedirectProbe:
		return "generic_redirect"
	default:
		return "none"
	}
}

// WellKnownPath is the RFC 8908 recommended API path.
const WellKnownPath = "/.well-known/captive-portal"

// rule binds one protocol class to the exact paths its probes use and the
// path keywords that identify the same probes when an operating system
// aims them at a third-party domain whose DNS was intercepted to resolve
// here. Order is priority order.
type rule struct {
	class    Class
	exact    []string
	keywords []string
}

var rules = []rule{
	{
		class: StandardAPI,
		exact: []string{WellKnownPath},
	},
	{
		// captive.apple.com/hotspot-detect.html
		class:    ApplePresence,
		exact:    []string{"/hotspot-detect.html"},
		keywords: []string{"hotspot-detect"},
	},
	{
		// connectivitycheck.gstatic.com, clients3.google.com and the many
		// vendor clones; NetworkManager's connectivity-check endpoints
		class: NullBodyProbe,
		exact: []string{
			"/generate_204",
			"/generate_204.html",
			"/gen_204",
			"/gen_204.html",
			"/connectivity-check",
			"/connectivity-check.html",
		},
		keywords: []string{"generate_204", "gen_204", "connectivity-check"},
	},
	{
		// www.msftncsi.com/ncsi.txt, www.msftconnecttest.com/connecttest.txt,
		// detectportal.firefox.com/success.txt, fedoraproject.org/static/hotspot.txt
		class: GenericRedirectProbe,
		exact: []string{
			"/ncsi.txt",
			"/connecttest.txt",
			"/success.txt",
			"/check_network_status.txt",
			"/static/hotspot.txt",
		},
		keywords: []string{
			"ncsi.txt",
			"connecttest.txt",
			"success.txt",
			"check_network_status.txt",
			"static/hotspot.txt",
		},
	},
}

// Classify maps a request path to a protocol class. It is a pure function
// of the path: OS probes target many different hostnames that all resolve
// to this server under DNS interception, so matching must stay
// host-agnostic. Exact matches take priority over keyword (substring)
// matches, each pass walking the rule table in order.
func Classify(path string) Class {
	for _, r := range rules {
		for _, p := range r.exact {
			if path == p {
				return r.class
			}
		}
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(path, kw) {
				return r.class
			}
		}
	}
	return None
}
