package errext_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/errext"
)

func assertHasHint(t *testing.T, err error, hint string) {
	t.Helper()
	var typederr errext.HasHint
	require.ErrorAs(t, err, &typederr)
	assert.Equal(t, hint, typederr.Hint())
	assert.Contains(t, err.Error(), typederr.Error())
}

func TestWithHintChaining(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errext.WithHint(nil, "test hint"))

	errBase := errors.New("base error")
	errBaseWithHint := errext.WithHint(errBase, "test hint")
	assertHasHint(t, errBaseWithHint, "test hint")

	errBaseWithTwoHints := errext.WithHint(errBaseWithHint, "better hint")
	assertHasHint(t, errBaseWithTwoHints, "better hint (test hint)")

	errWrapperWithHints := fmt.Errorf("wrapper error: %w", errBaseWithTwoHints)
	assertHasHint(t, errWrapperWithHints, "better hint (test hint)")

	finalErr := fmt.Errorf("woot: %w", errWrapperWithHints)
	assert.Equal(t, "woot: wrapper error: base error", finalErr.Error())
	assertHasHint(t, finalErr, "better hint (test hint)")
}

type fakeExceptionError struct {
	error
	stack string
}

func (e fakeExceptionError) StackTrace() string { return e.stack }
func (e fakeExceptionError) Unwrap() error      { return e.error }

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		text, fields := errext.Format(nil)
		assert.Equal(t, "", text)
		assert.Empty(t, fields)
	})

	t.Run("simple", func(t *testing.T) {
		t.Parallel()
		text, fields := errext.Format(errors.New("simple error"))
		assert.Equal(t, "simple error", text)
		assert.Empty(t, fields)
	})

	t.Run("exception", func(t *testing.T) {
		t.Parallel()
		err := fakeExceptionError{error: errors.New("simple error"), stack: "stack trace"}
		text, fields := errext.Format(err)
		assert.Equal(t, "stack trace", text)
		assert.Empty(t, fields)
	})

	t.Run("hint", func(t *testing.T) {
		t.Parallel()
		err := errext.WithHint(errors.New("error with hint"), "hint message")
		text, fields := errext.Format(err)
		assert.Equal(t, "error with hint", text)
		assert.Equal(t, map[string]interface{}{"hint": "hint message"}, fields)
	})
}
