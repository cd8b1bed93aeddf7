package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := Validation(map[string]string{"title": "is required", "category": "is invalid"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: category: is invalid; title: is required", err.Error())

	wrapped := fmt.Errorf("create blog: %w", Field("excerpt", "too long"))
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "too long", ve.Fields["excerpt"])
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}
