package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stacksapp/stacks-server/internal/domain"
	domainerrors "github.com/stacksapp/stacks-server/internal/errors"
	"github.com/stacksapp/stacks-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// currentUserKey is the context key for the authenticated user.
const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated user from context, or nil when the
// request is anonymous. Write handlers pass this straight to the service
// layer, which enforces authentication.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(currentUserKey).(*domain.User)
	return user
}

// setCurrentUser stores the user in context.
func setCurrentUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// authMiddleware resolves Bearer tokens into the current user.
//
// No Authorization header means anonymous: the request continues and write
// handlers reject it downstream. A header that is present but does not verify
// is rejected here with 401, before any handler runs. A token whose account
// no longer exists resolves to anonymous.
func authMiddleware(auth *service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeTokenError(w, logger, "invalid authorization header format")
				return
			}

			user, err := auth.Resolve(r.Context(), token)
			if err != nil {
				writeTokenError(w, logger, "invalid token")
				return
			}
			if user == nil {
				// Stale token: valid envelope, missing account.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setCurrentUser(r.Context(), user)))
		})
	}
}

// writeTokenError writes a 401 with the same shape huma produces via APIError.
// The middleware runs outside huma, so it marshals the body itself.
func writeTokenError(w http.ResponseWriter, logger *slog.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body, err := json.Marshal(&APIError{
		Code:    string(domainerrors.CodeToken),
		Message: message,
	})
	if err != nil {
		logger.Error("failed to marshal token error", "error", err)
		return
	}
	if _, err := w.Write(body); err != nil {
		logger.Debug("failed to write token error", "error", err)
	}
}
