package bridge

import (
	"crypto/subtle"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-api-helper/internal/commands"
)

// TokenHeader carries the per-launch token shared with the frontend.
const TokenHeader = "X-Samvad-Token"

// Failure kinds produced by the bridge before a command runs.
const (
	KindForbidden            = "forbidden"
	KindUnauthorized         = "unauthorized"
	KindUnsupportedMediaType = "unsupported_media_type"
)

// guard rejects requests that did not come from the local frontend.
type guard struct {
	token   string
	origins map[string]struct{}
}

func newGuard(token string, origins []string) *guard {
	g := &guard{token: token, origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			g.origins[o] = struct{}{}
		}
	}
	return g
}

// scope enforces a loopback Host and, when present, an allowed Origin. It
// runs before CORS handling so preflights from other sites are refused too.
func (g *guard) scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loopbackHost(r.Host) {
			writeJSON(w, http.StatusForbidden, commands.Failure{Message: "host not allowed", Kind: KindForbidden})
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := g.origins[origin]; !ok {
				writeJSON(w, http.StatusForbidden, commands.Failure{Message: "origin not allowed", Kind: KindForbidden})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authorize checks the launch token and requires a JSON body, which keeps
// browsers from sending the call as a simple request.
func (g *guard) authorize(w http.ResponseWriter, r *http.Request) bool {
	got := r.Header.Get(TokenHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(g.token)) != 1 {
		writeJSON(w, http.StatusUnauthorized, commands.Failure{Message: "missing or invalid bridge token", Kind: KindUnauthorized})
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, commands.Failure{
			Message: "content type must be application/json",
			Kind:    KindUnsupportedMediaType,
		})
		return false
	}
	return true
}

func loopbackHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
