package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"healthpass/internal/credential/authz"
	"healthpass/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns the operator it
// authenticates.
type TokenValidator interface {
	Validate(tokenString string) (authz.Operator, error)
}

type operatorKey struct{}

// OperatorAuth authenticates the Authorization: Bearer header and injects
// the operator identity into the request context. Requests without a valid
// token are rejected before any handler runs.
func OperatorAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			op, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized request",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
					"path", r.URL.Path,
				)
				writeAuthError(w, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperator retrieves the authenticated operator from the context.
// The zero Operator means no auth middleware ran.
func GetOperator(ctx context.Context) authz.Operator {
	if op, ok := ctx.Value(operatorKey{}).(authz.Operator); ok {
		return op
	}
	return authz.Operator{}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
