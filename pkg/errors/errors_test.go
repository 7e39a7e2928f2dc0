package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrPlanInvalid, "summary mismatch")
	assert.Equal(t, "[PLAN_INVALID] summary mismatch", err.Error())
	assert.Equal(t, errors.ErrPlanInvalid, errors.GetErrorCode(err))
}

func TestWrap_PreservesChain(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := errors.Wrap(inner, errors.ErrFileWrite, "writing target")
	require.NotNil(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, inner, stderrors.Unwrap(err))
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrFileWrite, "whatever"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrFileWrite, "whatever %d", 1))
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrPlanUnresolved, "%d conflicts unresolved", 2)
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrPlanUnresolved))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrPlanInvalid))
	assert.False(t, errors.IsErrorCode(fmt.Errorf("plain"), errors.ErrPlanUnresolved))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrActionExecute, "write failed").
		WithDetail("path", "/tmp/x").
		WithDetail("provider", "claude")
	assert.Equal(t, "/tmp/x", err.Details["path"])
	assert.Equal(t, "claude", err.Details["provider"])
}

func TestIs_MatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrRegistryLoad, "a")
	b := errors.New(errors.ErrRegistryLoad, "b")
	assert.True(t, stderrors.Is(a, b))
}
