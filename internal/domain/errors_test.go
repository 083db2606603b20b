package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("amount", "must be positive, got %s", "-5")
	assert.Equal(t, "validation failed: amount: must be positive, got -5", err.Error())
	assert.True(t, IsValidation(err))

	wrapped := fmt.Errorf("record cash: %w", err)
	assert.True(t, IsValidation(wrapped))

	assert.False(t, IsValidation(errors.New("disk full")))
	assert.False(t, IsValidation(nil))
}
