package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/creditledger-backend/pkg/logger"
)

type contextKey string

const ctxAccountID contextKey = "account_id"

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

// WithAccountID injects the account identifier into the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountID, accountID)
}

// AccountContext lifts the accountId route param into the request context and
// the log context for everything downstream.
func AccountContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "accountId")
			if accountID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithAccountID(r.Context(), accountID)
			if logg != nil {
				ctx = logg.WithAccountID(ctx, accountID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
