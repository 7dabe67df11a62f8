package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charfolio/authgate"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeEngineError maps engine sentinels onto the wire contract the browser
// client was written against.
func (a *API) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authgate.ErrCredentialsInvalid):
		detail(w, http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, authgate.ErrOTPInvalid), errors.Is(err, authgate.ErrNoSecretConfigured):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"otp_code": {"Invalid or expired 2FA code."},
		})
	case errors.Is(err, authgate.ErrLoginRateLimited), errors.Is(err, authgate.ErrOTPRateLimited):
		detail(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
	case errors.Is(err, authgate.ErrRefreshTokenMissing):
		detail(w, http.StatusUnauthorized, "Refresh token missing")
	case errors.Is(err, authgate.ErrAccessTokenMissing):
		detail(w, http.StatusUnauthorized, "No access token")
	case errors.Is(err, authgate.ErrTokenExpired),
		errors.Is(err, authgate.ErrTokenInvalid),
		errors.Is(err, authgate.ErrTokenTypeMismatch):
		detail(w, http.StatusUnauthorized, "Token is invalid or expired")
	case errors.Is(err, authgate.ErrDuplicateUsername):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"username": {"Username is taken."},
		})
	case errors.Is(err, authgate.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"email": {"Email is already in use."},
		})
	case errors.Is(err, authgate.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"password2": {"Passwords do not match."},
		})
	case errors.Is(err, authgate.ErrPasswordPolicy):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"password": {"Ensure this field has at least 8 characters."},
		})
	case errors.Is(err, authgate.ErrRegistrationInvalid):
		detail(w, http.StatusBadRequest, "Invalid registration data.")
	case errors.Is(err, authgate.ErrUserNotFound):
		detail(w, http.StatusUnauthorized, "No active account found with the given credentials")
	default:
		a.logger.Error("unhandled engine error", zapError(err))
		detail(w, http.StatusInternalServerError, "Internal server error")
	}
}
