package httpapi

import (
	"net/http"
	"time"
)

// Fixed cookie names the browser client depends on.
const (
	CookieAccess  = "access_token"
	CookieRefresh = "refresh_token"
)

// CookieConfig drives the security attributes of the session cookies.
//
// Secure and CrossSite are deliberately separate flags: serving over TLS
// does not imply the frontend is embedded cross-site. SameSite=None is only
// legal on secure cookies, so it is applied when both flags are set;
// otherwise the cookies are SameSite=Lax.
type CookieConfig struct {
	Secure    bool
	CrossSite bool
	Domain    string
	Path      string
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure && c.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

func (c CookieConfig) build(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		Domain:   c.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	}
}

// Attach sets both session cookies on the response.
func (c CookieConfig) Attach(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, c.build(CookieAccess, access, accessTTL))
	http.SetCookie(w, c.build(CookieRefresh, refresh, refreshTTL))
}

// AttachAccessOnly replaces the access cookie and leaves the refresh cookie
// untouched. Used by the refresh flow.
func (c CookieConfig) AttachAccessOnly(w http.ResponseWriter, access string, accessTTL time.Duration) {
	http.SetCookie(w, c.build(CookieAccess, access, accessTTL))
}

// Extract reads a named cookie from the request. Returns "" when absent.
func Extract(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ClearAll deletes both session cookies. MaxAge -1 makes the browser drop
// them immediately rather than waiting for an expiry to pass.
func (c CookieConfig) ClearAll(w http.ResponseWriter) {
	for _, name := range []string{CookieAccess, CookieRefresh} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     c.path(),
			Domain:   c.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: c.sameSite(),
		})
	}
}
