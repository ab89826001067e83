package echoapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/gateway/core/session"
)

const (
	contextTokenKey   = "token"
	contextClaimsKey  = "claims"
	contextSessionKey = "session"

	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// publicPrefixes need no session to pass the gate.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/password-reset",
	"/unauthorized",
	"/terms",
	"/privacy",
	"/healthz",
	"/metrics",
}

func isPublicPath(path string) bool {
	for _, prefix := range publicPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// requestGate is the edge filter evaluated once per request, before any
// handler runs. Verification failures of any kind read as "no session";
// they redirect, never 500. The cookie is cleared only on an active role
// rejection, not on passive absence.
func requestGate(verifier *session.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			path := ctx.Request().URL.Path
			public := isPublicPath(path)

			var token string
			if cookie, err := ctx.Cookie(session.CookieName); err == nil {
				token = cookie.Value
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if !public {
					return ctx.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(path))
				}
				return next(ctx)
			}

			// a known-but-disallowed role is turned away no matter the destination
			if claims.Role != "" && !session.IsAllowedAdminRole(claims.Role) {
				clearSessionCookie(ctx)
				return ctx.Redirect(http.StatusFound, loginPath+"?error=unauthorized_role")
			}

			if path == "/" || path == loginPath || path == "/register" {
				return ctx.Redirect(http.StatusFound, dashboardPath)
			}

			ctx.Set(contextTokenKey, token)
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func contextToken(ctx echo.Context) string {
	if token, ok := ctx.Get(contextTokenKey).(string); ok {
		return token
	}
	return ""
}

// contextSession resolves the full session for the request, caching it on the
// echo context.
func (s *server) contextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	token := contextToken(ctx)
	if token == "" {
		return session.Session{}, errUnauthorized
	}
	sess, err := s.opts.Resolver.Current(ctx.Request().Context(), token)
	if err != nil {
		return session.Session{}, errUnauthorized
	}
	ctx.Set(contextSessionKey, sess)
	return sess, nil
}
