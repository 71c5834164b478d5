package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	cause := errors.New("a room with this number already exists")
	err := NewValidationError(cause, FieldError{Field: "number", Error: cause.Error()})

	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(errors.Wrap(err, "creating room")))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFound(err))

	assert.Equal(t, "number: this field is required",
		NewValidationError(nil, FieldError{Field: "number", Error: "this field is required"}).Error())
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("room", "42")
	assert.Equal(t, `room "42" not found`, err.Error())
	assert.Equal(t, "resident not found", NewNotFoundError("resident", "").Error())
	assert.True(t, IsNotFound(errors.Wrap(err, "assigning occupants")))
	assert.False(t, IsNotFound(errors.New("room not found")))
}

func TestShutdownError(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "saving")))
	assert.False(t, IsShutdown(ErrCacheMiss))
}
