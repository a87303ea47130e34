package nanabanana

import "net/http"

// Cookie names used by the provider's auth.js frontend.
const (
	csrfCookieName    = "__Host-authjs.csrf-token"
	sessionCookieName = "__Secure-authjs.session-token"
)

// Session carries the per-flow request context for the provider: the CSRF
// token and cookie obtained from the CSRF endpoint, and the session cookie
// extracted after verification. It is threaded explicitly through the
// provisioning steps instead of rebuilding headers per call.
type Session struct {
	CSRFToken    string
	CSRFCookie   string
	SessionToken string
}

// SessionFromToken builds a Session for an already-provisioned account whose
// session credential was loaded from the store.
func SessionFromToken(token string) *Session {
	return &Session{SessionToken: token}
}

// attachCSRF adds the CSRF cookie to a request.
func (s *Session) attachCSRF(req *http.Request) {
	if s.CSRFCookie != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: s.CSRFCookie})
	}
}

// attachSession adds the session cookie to a request.
func (s *Session) attachSession(req *http.Request) {
	if s.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: s.SessionToken})
	}
}

// cookieValue returns the named cookie from a response, or "" when absent.
func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
