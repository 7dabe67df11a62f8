package authgate

import (
	"context"
	"errors"

	"github.com/charfolio/authgate/jwt"
)

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is never rotated; it stays valid until its embedded
// expiry and the caller keeps presenting the same one.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if e == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		return "", ErrRefreshTokenMissing
	}

	claims, err := e.jwtManager.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		mapped := mapTokenErr(err)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", mapped, nil)
		return "", mapped
	}

	access, err := e.jwtManager.CreateAccess(claims.Subject)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, claims.Subject, nil, nil)
	return access, nil
}

// VerifyAccess describes the verifyaccess operation and its observable behavior.
//
// VerifyAccess may return an error when input validation, dependency calls, or security checks fail.
// VerifyAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyAccess(ctx context.Context, accessToken string) (TokenClaims, error) {
	if e == nil || e.jwtManager == nil {
		return TokenClaims{}, ErrEngineNotReady
	}
	if accessToken == "" {
		e.metricInc(MetricVerifyFailure)
		return TokenClaims{}, ErrAccessTokenMissing
	}

	claims, err := e.jwtManager.Parse(accessToken, jwt.TypeAccess)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		return TokenClaims{}, mapTokenErr(err)
	}

	e.metricInc(MetricVerifySuccess)
	return tokenClaimsFrom(claims), nil
}

// VerifyRefresh checks a refresh token without issuing anything.
func (e *Engine) VerifyRefresh(ctx context.Context, refreshToken string) (TokenClaims, error) {
	if e == nil || e.jwtManager == nil {
		return TokenClaims{}, ErrEngineNotReady
	}
	if refreshToken == "" {
		return TokenClaims{}, ErrRefreshTokenMissing
	}

	claims, err := e.jwtManager.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return TokenClaims{}, mapTokenErr(err)
	}
	return tokenClaimsFrom(claims), nil
}

// Logout validates the presented access token and records the logout. Tokens
// are stateless, so nothing is revoked server-side; the session transport is
// responsible for clearing the cookies.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}
	if accessToken == "" {
		return ErrAccessTokenMissing
	}

	claims, err := e.jwtManager.Parse(accessToken, jwt.TypeAccess)
	if err != nil {
		return mapTokenErr(err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, claims.Subject, nil, nil)
	return nil
}

func tokenClaimsFrom(claims *jwt.Claims) TokenClaims {
	out := TokenClaims{
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}

func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTypeMismatch):
		return ErrTokenTypeMismatch
	default:
		return ErrTokenInvalid
	}
}
