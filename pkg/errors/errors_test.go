// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, code lookup and recoverability

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "pack not found",
			wantStr: "[NOT_FOUND] pack not found",
		},
		{
			name:    "parse_error",
			code:    errors.ErrParse,
			message: "unterminated table header",
			wantStr: "[PARSE_ERROR] unterminated table header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrSpec, "group %q references unknown member %q", "fancy", "nope")
	assert.Equal(t, `[SPEC_ERROR] group "fancy" references unknown member "nope"`, err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("wraps_cause", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := errors.Wrap(cause, errors.ErrFetch, "failed to query registry")

		require.NotNil(t, err)
		assert.Equal(t, "[FETCH_ERROR] failed to query registry: connection refused", err.Error())
		assert.Same(t, cause, stderrors.Unwrap(err))
	})

	t.Run("nil_cause_yields_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrFetch, "nothing"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrFetch, "nothing %d", 1))
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrParse, "bad manifest").
		WithDetail("line", 3).
		WithDetails(map[string]interface{}{"column": 7, "path": "Cargo.toml"})

	assert.Equal(t, 3, err.Details["line"])
	assert.Equal(t, 7, err.Details["column"])
	assert.Equal(t, "Cargo.toml", errors.GetErrorDetails(err)["path"])
}

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrApply, "boom")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrApply, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrParse, "boom")))
}

func TestIsErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrNotFound, "no such pack")
	outer := errors.Wrap(inner, errors.ErrFetch, "lookup failed")
	wrappedStd := fmt.Errorf("context: %w", outer)

	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
		want bool
	}{
		{"outer code", outer, errors.ErrFetch, true},
		{"inner code through chain", outer, errors.ErrNotFound, true},
		{"through std wrapping", wrappedStd, errors.ErrNotFound, true},
		{"absent code", outer, errors.ErrParse, false},
		{"plain error", fmt.Errorf("plain"), errors.ErrFetch, false},
		{"nil error", nil, errors.ErrFetch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrSpec, errors.GetErrorCode(errors.New(errors.ErrSpec, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("x")))
	assert.Nil(t, errors.GetErrorDetails(fmt.Errorf("x")))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, errors.IsRecoverable(errors.New(errors.ErrFetch, "timeout")))
	assert.True(t, errors.IsRecoverable(errors.New(errors.ErrNotFound, "missing")))
	assert.False(t, errors.IsRecoverable(errors.New(errors.ErrApply, "rollback")))
	assert.False(t, errors.IsRecoverable(errors.New(errors.ErrParse, "bad")))
}

func TestJoin(t *testing.T) {
	assert.NoError(t, errors.Join())
	assert.NoError(t, errors.Join(nil, nil))

	single := errors.New(errors.ErrFetch, "offline")
	assert.Same(t, single, errors.Join(nil, single))

	joined := errors.Join(single, errors.New(errors.ErrNotFound, "gone"))
	assert.True(t, errors.IsErrorCode(joined, errors.ErrFetch))
	assert.True(t, errors.IsErrorCode(joined, errors.ErrNotFound))
}
