package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charfolio/authgate"
	"github.com/charfolio/authgate/memstore"
	"github.com/stretchr/testify/require"
)

// RFC 6238 test secret ("12345678901234567890" in base32); at T=59 the
// expected SHA1 6-digit code is 287082.
const (
	rfcSecret  = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcCodeT59 = "287082"
)

type fixture struct {
	server    *httptest.Server
	directory *memstore.Directory
	twoFactor *memstore.TwoFactorStore
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Unix(59, 0).UTC()
	f := &fixture{
		directory: memstore.NewDirectory(),
		twoFactor: memstore.NewTwoFactorStore(),
		clock:     &now,
	}

	cfg := authgate.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("httpapi-test-secret-key-32-bytes")

	engine, err := authgate.New().
		WithConfig(cfg).
		WithUserDirectory(f.directory).
		WithTwoFactorStore(f.twoFactor).
		WithClock(func() time.Time { return *f.clock }).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	api := New(engine, CookieConfig{}, nil)
	f.server = httptest.NewServer(api.Routes())
	t.Cleanup(f.server.Close)

	return f
}

func (f *fixture) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, &buf)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func (f *fixture) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *fixture) register(t *testing.T, username, email string) {
	t.Helper()
	resp := f.post(t, "/register", map[string]string{
		"username":  username,
		"email":     email,
		"password":  "str0ng-password",
		"password2": "str0ng-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (f *fixture) login(t *testing.T, username string) (access, refresh *http.Cookie) {
	t.Helper()
	resp := f.post(t, "/login", map[string]string{
		"username": username,
		"password": "str0ng-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	access = cookieByName(resp, CookieAccess)
	refresh = cookieByName(resp, CookieRefresh)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

func TestLoginSetsCookiesAndKeepsTokensOutOfBody(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")

	resp := f.post(t, "/login", map[string]string{
		"username": "alice",
		"password": "str0ng-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	access := cookieByName(resp, CookieAccess)
	refresh := cookieByName(resp, CookieRefresh)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)

	body := decode(t, resp)
	require.NotContains(t, body, "access")
	require.NotContains(t, body, "refresh")
	require.NotContains(t, body, "access_token")
	require.NotContains(t, body, "refresh_token")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")

	resp := f.post(t, "/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, "No active account found with the given credentials", body["detail"])
	require.Empty(t, resp.Cookies())
}

func TestRegisterValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")

	resp := f.post(t, "/register", map[string]string{
		"username":  "alice",
		"email":     "new@example.com",
		"password":  "str0ng-password",
		"password2": "str0ng-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, []any{"Username is taken."}, body["username"])

	resp = f.post(t, "/register", map[string]string{
		"username":  "bob",
		"email":     "alice@example.com",
		"password":  "str0ng-password",
		"password2": "str0ng-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, []any{"Email is already in use."}, body["email"])

	resp = f.post(t, "/register", map[string]string{
		"username":  "carol",
		"email":     "carol@example.com",
		"password":  "str0ng-password",
		"password2": "different-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, []any{"Passwords do not match."}, body["password2"])
}

func TestRefreshReplacesOnlyAccessCookie(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	_, refresh := f.login(t, "alice")

	resp := f.post(t, "/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NotNil(t, cookieByName(resp, CookieAccess))
	require.Nil(t, cookieByName(resp, CookieRefresh))
}

func TestRefreshMissingCookie(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, "Refresh token missing", body["detail"])
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	access, _ := f.login(t, "alice")

	resp := f.post(t, "/verify", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.post(t, "/verify", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, "No access token", body["detail"])
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	access, refresh := f.login(t, "alice")

	*f.clock = f.clock.Add(16 * time.Minute)

	resp := f.post(t, "/verify", nil, access)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The refresh token is still inside its 7-day window.
	resp = f.post(t, "/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NotNil(t, cookieByName(resp, CookieAccess))
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	access, _ := f.login(t, "alice")

	resp := f.post(t, "/logout", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, name := range []string{CookieAccess, CookieRefresh} {
		c := cookieByName(resp, name)
		require.NotNil(t, c, name)
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
	}

	body := decode(t, resp)
	require.Equal(t, "Logged out", body["message"])
}

func TestLogoutRequiresAuth(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/logout", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	access, _ := f.login(t, "alice")

	resp := f.get(t, "/me", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "alice@example.com", body["email"])
}

func TestTwoFactorLazyProvisioning(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob", "bob@example.com")
	access, _ := f.login(t, "bob")

	// First GET generates and stores a secret.
	resp := f.get(t, "/2fa", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, true, body["has_secret"])
	secret, ok := body["secret"].(string)
	require.True(t, ok)
	require.Len(t, secret, 32)

	// Subsequent GETs never regenerate it.
	resp = f.get(t, "/2fa", access)
	body = decode(t, resp)
	require.Equal(t, secret, body["secret"])
}

func TestTwoFactorEnrollmentAndLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")
	access, _ := f.login(t, "alice")

	// Seed the RFC 6238 vector secret so the test can supply a real code;
	// the lazy-provisioning path then sees an enrolled secret and reuses it.
	user, err := f.directory.GetByUsername(t.Context(), "alice")
	require.NoError(t, err)
	stored, err := f.twoFactor.SetSecret(t.Context(), user.ID, rfcSecret)
	require.NoError(t, err)
	require.Equal(t, rfcSecret, stored)

	resp := f.get(t, "/2fa", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, false, body["is_enabled"])
	require.Equal(t, true, body["has_secret"])
	require.Equal(t, rfcSecret, body["secret"])
	require.Contains(t, body["otpauth_url"], "otpauth://totp/")

	// A second GET returns the same secret.
	resp = f.get(t, "/2fa", access)
	body2 := decode(t, resp)
	require.Equal(t, body["secret"], body2["secret"])

	// Enable with a valid code.
	resp = f.post(t, "/2fa", map[string]any{"enable": true, "otp_code": rfcCodeT59}, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, true, body["is_enabled"])

	// Login without a code now parks at the second-factor step, with no cookies.
	resp = f.post(t, "/login", map[string]string{
		"username": "alice",
		"password": "str0ng-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, true, body["2fa_required"])
	require.Empty(t, resp.Cookies())

	// An invalid code is a field error.
	resp = f.post(t, "/login", map[string]string{
		"username": "alice",
		"password": "str0ng-password",
		"otp_code": "000000",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, []any{"Invalid or expired 2FA code."}, body["otp_code"])

	// A valid code completes the login with both cookies.
	resp = f.post(t, "/login", map[string]string{
		"username": "alice",
		"password": "str0ng-password",
		"otp_code": rfcCodeT59,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NotNil(t, cookieByName(resp, CookieAccess))
	require.NotNil(t, cookieByName(resp, CookieRefresh))

	// Disable also demands a valid code.
	access, _ = f.login(t, "alice")

	resp = f.post(t, "/2fa", map[string]any{"enable": false, "otp_code": "999999"}, access)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.post(t, "/2fa", map[string]any{"enable": false, "otp_code": rfcCodeT59}, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, false, body["is_enabled"])
}

func TestCrossSiteCookieAttributes(t *testing.T) {
	cfg := CookieConfig{Secure: true, CrossSite: true}
	rec := httptest.NewRecorder()
	cfg.Attach(rec, "a", "r", 15*time.Minute, 7*24*time.Hour)

	resp := rec.Result()
	access := cookieByName(resp, CookieAccess)
	require.NotNil(t, access)
	require.True(t, access.Secure)
	require.Equal(t, http.SameSiteNoneMode, access.SameSite)

	// Without the cross-site flag, secure cookies stay Lax.
	rec = httptest.NewRecorder()
	CookieConfig{Secure: true}.Attach(rec, "a", "r", time.Minute, time.Hour)
	access = cookieByName(rec.Result(), CookieAccess)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)
}
