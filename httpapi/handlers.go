package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/charfolio/authgate"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type toggleRequest struct {
	Enable  bool   `json:"enable"`
	OTPCode string `json:"otp_code"`
}

type userBody struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func userBodyFrom(u authgate.UserRecord) userBody {
	return userBody{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		detail(w, http.StatusBadRequest, "Malformed JSON body.")
		return false
	}
	return true
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	r = requestContext(r)
	result, err := a.engine.Login(r.Context(), req.Username, req.Password, req.OTPCode)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	if result.TwoFactorRequired {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"detail":       "2FA code required.",
			"2fa_required": true,
		})
		return
	}

	cfg := a.engine.Config()
	a.cookies.Attach(w, result.AccessToken, result.RefreshToken, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	a.logger.Info("login", zap.String("user_id", result.UserID))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := Extract(r, CookieRefresh)
	access, err := a.engine.Refresh(r.Context(), refresh)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	a.cookies.AttachAccessOnly(w, access, a.engine.Config().JWT.AccessTTL)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := Extract(r, CookieAccess)
	if _, err := a.engine.VerifyAccess(r.Context(), token); err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := Extract(r, CookieAccess)
	if err := a.engine.Logout(r.Context(), token); err != nil {
		a.writeEngineError(w, err)
		return
	}

	a.cookies.ClearAll(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	r = requestContext(r)
	user, err := a.engine.Register(r.Context(), authgate.RegisterRequest{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.Password2,
	})
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"user": userBodyFrom(user),
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.engine.CurrentUser(r.Context(), Extract(r, CookieAccess))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBodyFrom(user))
}

func (a *API) handleTwoFactorInfo(w http.ResponseWriter, r *http.Request) {
	status, err := a.engine.TwoFactorInfo(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"is_enabled":  status.Enabled,
		"has_secret":  status.HasSecret,
		"otpauth_url": status.ProvisioningURI,
		"secret":      status.Secret,
	})
}

func (a *API) handleTwoFactorToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	r = requestContext(r)
	status, err := a.engine.SetTwoFactorEnabled(r.Context(), subjectFromContext(r.Context()), req.OTPCode, req.Enable)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"is_enabled": status.Enabled,
	})
}
