package httpapi

import (
	"net"
	"net/http"

	"github.com/charfolio/authgate"
	"go.uber.org/zap"
)

// API wires the engine, cookie transport, and logger into an http.Handler.
type API struct {
	engine  *authgate.Engine
	cookies CookieConfig
	logger  *zap.Logger
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(engine *authgate.Engine, cookies CookieConfig, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{engine: engine, cookies: cookies, logger: logger}
}

// Routes returns the full route table. Paths and methods mirror the browser
// client's expectations; unknown paths fall through to 404.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("POST /refresh", a.handleRefresh)
	mux.HandleFunc("POST /verify", a.handleVerify)
	mux.HandleFunc("POST /logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("GET /me", a.requireAuth(a.handleMe))
	mux.HandleFunc("GET /2fa", a.requireAuth(a.handleTwoFactorInfo))
	mux.HandleFunc("POST /2fa", a.requireAuth(a.handleTwoFactorToggle))

	return mux
}

func zapError(err error) zap.Field { return zap.Error(err) }

// requestContext threads the caller's IP into the engine context so the
// throttle and audit layers can key on it.
func requestContext(r *http.Request) *http.Request {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return r
	}
	return r.WithContext(authgate.WithClientIP(r.Context(), host))
}
