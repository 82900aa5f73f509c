package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/api/responses"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
)

type contextKey string

const ctxCustomerID contextKey = "customer_id"

// customerIDHeader carries the authenticated customer identity injected by
// the upstream gateway.
const customerIDHeader = "X-Customer-Id"

func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerID).(string); ok {
		return v
	}
	return ""
}

// WithCustomerID injects the customer identifier into the context.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerID, customerID)
}

// CustomerContext reads the gateway identity header into the request context
// and tags request logs with it. Routes that need the identity enforce it
// with RequireCustomer.
func CustomerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID := strings.TrimSpace(r.Header.Get(customerIDHeader))
			if customerID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithCustomerID(r.Context(), customerID)
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, customerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer rejects requests that arrived without a parseable
// customer identity.
func RequireCustomer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := CustomerIDFromContext(r.Context())
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer identity header required"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer identity header must be a uuid"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CustomerUUID parses the context identity. Handlers call it after
// RequireCustomer, so a failure here means a routing misconfiguration.
func CustomerUUID(ctx context.Context) (uuid.UUID, error) {
	raw := CustomerIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity malformed")
	}
	return id, nil
}
