package handlers

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

type contextKey string

const (
	requestIDContextKey      contextKey = "requestID"
	principalContextKey      contextKey = "principal"
	sessionClearerContextKey contextKey = "sessionClearer"
)

// SignInPath is where page requests without a session are sent.
const SignInPath = "/sign-in"

// ContextualLoggerMiddleware gives every request a logger tagged with a request ID.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the signed-in user set by RequireSession.
func PrincipalFromContext(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*services.Principal)
	return p, ok && p != nil
}

// WithPrincipal is used by RequireSession and by tests.
func WithPrincipal(ctx context.Context, p *services.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := SignInPath
	if r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// RequireSession admits requests that carry a live session cookie. API calls
// without one get a 401; page loads are redirected to the sign-in page.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger := logger.FromContext(r.Context())

		cookie, err := r.Cookie(h.cookies.Name)
		if err != nil || cookie.Value == "" {
			ctxLogger.Debug("RequireSession: session cookie missing", "path", r.URL.Path)
			h.rejectUnauthenticated(w, r)
			return
		}

		p, err := h.sessions.Lookup(r.Context(), cookie.Value)
		if err != nil {
			if err != services.ErrSessionNotFound {
				ctxLogger.Error("RequireSession: session lookup failed", "error", err)
			} else {
				ctxLogger.Debug("RequireSession: session not found or expired", "path", r.URL.Path)
			}
			h.clearCookie(w)
			h.rejectUnauthenticated(w, r)
			return
		}

		enrichedLogger := ctxLogger.With(slog.Int64("userID", p.UserID))
		ctx := logger.ToContext(r.Context(), enrichedLogger)
		ctx = WithPrincipal(ctx, p)
		ctx = context.WithValue(ctx, sessionClearerContextKey, func(ctx context.Context) {
			if err := h.sessions.Logout(ctx, p.SessionID); err != nil {
				logger.FromContext(ctx).Error("Failed to clear rejected session", "error", err)
			}
			h.clearCookie(w)
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandler) rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Authentication required", Code: "unauthorized"}, http.StatusUnauthorized)
		return
	}
	redirectToSignIn(w, r)
}

// AdminOnly must run after RequireSession.
func (h *AuthHandler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			h.rejectUnauthenticated(w, r)
			return
		}
		if !p.IsAdmin() {
			logger.FromContext(r.Context()).Warn("AdminOnly: non-admin access attempt", "path", r.URL.Path, "role", p.Role)
			if isAPIRequest(r) {
				utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Admin role required", Code: "forbidden"}, http.StatusForbidden)
				return
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
