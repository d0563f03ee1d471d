package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeExpired, "credential is past its lifetime")
	require.Equal(t, "credential is past its lifetime", err.Error())

	bare := &Error{Code: CodeInternal}
	require.Equal(t, "internal_error", bare.Error())
}

func TestHasCode(t *testing.T) {
	err := New(CodeDecodeFailed, "bad payload")
	require.True(t, HasCode(err, CodeDecodeFailed))
	require.False(t, HasCode(err, CodeExpired))
	require.False(t, HasCode(errors.New("plain"), CodeDecodeFailed))
	require.False(t, HasCode(nil, CodeDecodeFailed))
}

func TestWrap(t *testing.T) {
	t.Run("wraps infrastructure errors with the given code", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "audit store unavailable")

		require.True(t, HasCode(err, CodeInternal))
		require.True(t, errors.Is(err, cause))
	})

	t.Run("preserves an existing domain code", func(t *testing.T) {
		inner := New(CodeConstruction, "lifetime must be positive")
		err := Wrap(inner, CodeInternal, "issuance failed")

		require.True(t, HasCode(err, CodeConstruction),
			"the original domain code survives re-wrapping")
	})
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeAuthorizationDenied, "bound to hospital H1")
	b := New(CodeAuthorizationDenied, "different message")
	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, New(CodeUnauthorized, "x")))
}
