// Package middleware carries the dashboard's routing guard: unauthenticated
// visitors are redirected to sign-in, authenticated visitors are kept away
// from the auth pages, API calls answer 401 instead of redirecting.
package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
)

// SessionChecker is the slice of the auth use case the guard needs.
type SessionChecker interface {
	Current(ctx context.Context) (*domain.Session, error)
}

const tokenCookie = "auth-token"

// SessionGuard enforces the sign-in redirect rules around the wrapped handler.
func SessionGuard(sessions SessionChecker, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			path := string(ctx.Path())
			authed := isAuthenticated(ctx, sessions)

			switch {
			case authed && isAuthPage(path):
				ctx.Redirect("/dashboard", fasthttp.StatusFound)
			case !authed && isAPIPath(path):
				logger.Debug("unauthenticated api request", zap.String("path", path))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			case !authed && !isAuthPage(path):
				ctx.Redirect("/auth/signin", fasthttp.StatusFound)
			default:
				next(ctx)
			}
		}
	}
}

// isAuthenticated consults the session store, falling back to the mirrored
// cookie so a freshly signed-in browser passes before its next store read.
func isAuthenticated(ctx *fasthttp.RequestCtx, sessions SessionChecker) bool {
	stdCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := sessions.Current(stdCtx); err == nil {
		return true
	}
	return len(ctx.Request.Header.Cookie(tokenCookie)) > 0
}

func isAuthPage(path string) bool {
	return path == "/auth/signin" || path == "/auth/signup"
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
