package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not found"},
		{ErrConflict, "conflict"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
		{ErrTooManyRequests, "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
		assert.NoError(t, Wrapf(nil, "context %d", 1))
	})

	t.Run("keeps the chain across layers", func(t *testing.T) {
		domainErr := Wrap(ErrNotFound, "token not found")
		repoErr := Wrapf(domainErr, "get token %s", "abc")

		assert.EqualError(t, repoErr, "get token abc: token not found: not found")
		assert.True(t, Is(repoErr, domainErr))
		assert.True(t, Is(repoErr, ErrNotFound))
		assert.False(t, Is(repoErr, ErrConflict))
	})
}

type codedError struct{ code int }

func (e *codedError) Error() string { return "coded" }

func TestAs(t *testing.T) {
	err := Wrap(&codedError{code: 42}, "outer")

	var target *codedError
	require.True(t, As(err, &target))
	assert.Equal(t, 42, target.code)

	assert.False(t, As(New("plain"), &target))
}

func TestNew(t *testing.T) {
	a, b := New("same"), New("same")
	assert.False(t, stderrors.Is(a, b), "each call creates a distinct error")
}
