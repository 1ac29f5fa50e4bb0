package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	err := ErrorGeneric.NewError(cause)

	assert.Equal(t, "ERROR.UNKNOWN", err.Key)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "connection refused", err.Error())
	assert.NotEmpty(t, err.Caller)
	assert.Contains(t, err.Caller, "_test.go")
}

func TestNewErrorNilCause(t *testing.T) {
	var err Error
	assert.NotPanics(t, func() {
		err = ErrorGeneric.NewError(nil)
	})

	assert.Equal(t, "ERROR.UNKNOWN", err.Key)
	assert.Equal(t, "ERROR.UNKNOWN", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestErrorIs(t *testing.T) {
	wrapped := Wrap(ErrorRouteNotFound, fmt.Errorf("no handler for /ghost"))

	assert.True(t, stderrors.Is(wrapped, ErrorRouteNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrorPluginManifest))
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(ErrorGeneric, nil))
		assert.Nil(t, WrapWithStatus(ErrorGeneric, nil, 500))
	})

	t.Run("keeps status on an already wrapped error", func(t *testing.T) {
		inner := ErrorRouteNotFound.NewError(fmt.Errorf("missing"))

		err := WrapWithStatus(ErrorGeneric, inner, http.StatusInternalServerError)

		e, ok := err.(Error)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, e.Status)
	})

	t.Run("forces status onto a plain error", func(t *testing.T) {
		err := WrapWithStatus(ErrorGeneric, fmt.Errorf("boom"), http.StatusBadGateway)

		e, ok := err.(Error)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, e.Status)
	})
}

func TestUnwind(t *testing.T) {
	inner := ErrorRouteNotFound.NewError(fmt.Errorf("missing"))
	outer := Error{Key: "ERROR.OUTER", Err: inner, ErrorString: inner.Error()}

	assert.Equal(t, ErrorRouteNotFound.Key, Unwind(outer).Key)
	assert.Equal(t, ErrorGeneric.Key, Unwind(fmt.Errorf("plain")).Key)

	assert.NotPanics(t, func() {
		assert.Equal(t, ErrorGeneric.Key, Unwind(nil).Key)
	})
}

func TestSetData(t *testing.T) {
	err := ErrorUnknownEvent.NewError(fmt.Errorf("unknown event"))

	result := SetData(err, "event", "onBoot")

	e, ok := result.(Error)
	assert.True(t, ok)
	assert.Equal(t, "onBoot", e.Data["event"])

	assert.Nil(t, SetData(nil, "k", "v"))
}
