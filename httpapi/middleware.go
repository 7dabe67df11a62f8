package httpapi

import (
	"context"
	"net/http"
)

type authSubjectKey struct{}

// requireAuth verifies the access cookie before invoking next. The verified
// subject (user id) and the raw token are handed down via the request context.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := Extract(r, CookieAccess)
		if token == "" {
			detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := a.engine.VerifyAccess(r.Context(), token)
		if err != nil {
			detail(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}

		ctx := context.WithValue(r.Context(), authSubjectKey{}, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}

func subjectFromContext(ctx context.Context) string {
	id, _ := ctx.Value(authSubjectKey{}).(string)
	return id
}
