package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"healthpass/internal/credential/authz"
	"healthpass/pkg/requestcontext"
)

type stubValidator struct {
	op  authz.Operator
	err error
}

func (s stubValidator) Validate(string) (authz.Operator, error) {
	return s.op, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOperatorAuth(t *testing.T) {
	valid := stubValidator{op: authz.Operator{ID: "D1", Role: authz.RoleDoctor}}

	run := func(validator TokenValidator, header string) (*httptest.ResponseRecorder, authz.Operator) {
		var seen authz.Operator
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetOperator(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		OperatorAuth(validator, discardLogger())(next).ServeHTTP(rec, req)
		return rec, seen
	}

	t.Run("valid token injects the operator", func(t *testing.T) {
		rec, seen := run(valid, "Bearer some-token")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "D1", seen.ID.String())
		require.Equal(t, authz.RoleDoctor, seen.Role)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec, _ := run(valid, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer header is rejected", func(t *testing.T) {
		rec, _ := run(valid, "Basic dXNlcjpwYXNz")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("validator failure is rejected", func(t *testing.T) {
		rec, _ := run(stubValidator{err: errors.New("bad token")}, "Bearer some-token")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetOperatorWithoutMiddleware(t *testing.T) {
	op := GetOperator(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.True(t, op.ID.IsNil())
}

func TestClientMetadata(t *testing.T) {
	var client string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client = requestcontext.Client(r.Context())
	})

	t.Run("browser user agent is summarized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
		ClientMetadata(next).ServeHTTP(httptest.NewRecorder(), req)

		require.Contains(t, client, "Chrome")
		require.Contains(t, client, "Linux")
	})

	t.Run("missing user agent leaves no client", func(t *testing.T) {
		client = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Del("User-Agent")
		ClientMetadata(next).ServeHTTP(httptest.NewRecorder(), req)

		require.Empty(t, client)
	})
}
