package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/callsys/callboard/internal/service/auth"
	"github.com/callsys/callboard/pkg/ctxlogger"
	"github.com/callsys/callboard/pkg/rest"
)

func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
		next.ServeHTTP(w, r)
	})
}

// authMw requires a valid session cookie whose role may perform action.
func (c controller) authMw(action auth.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := c.identityFromCookie(r)
			if err != nil {
				c.logger.InfoContext(r.Context(), "unauthenticated request", "error", err)
				c.clearSessionCookie(w)
				rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "missing or invalid session"})
				return
			}

			ctx := ctxlogger.AppendCtx(r.Context(), slog.String("username", identity.Username))
			if !c.authService.Authorize(identity, action) {
				c.logger.InfoContext(ctx, "permission denied", "action", action, "role", identity.Role)
				rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": auth.ErrPermissionDenied.Error()})
				return
			}

			ctx = context.WithValue(ctx, identityCtxKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
