package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorKeepsCode(t *testing.T) {
	base := Conflict(CodeInvalidTransition, "cannot move item from %s to %s", "ready", "pending")
	wrapped := fmt.Errorf("update item: %w", base)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "cannot move item from ready to pending", appErr.Message)
	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))
	assert.False(t, errors.Is(wrapped, ErrOrderNotFound))
	assert.True(t, HasCode(wrapped, CodeInvalidTransition))
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal(errors.New("pq: connection reset"))

	assert.Equal(t, "Internal server error", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDefaultCodes(t *testing.T) {
	assert.Equal(t, CodeValidation, Validation("", "bad").Code)
	assert.Equal(t, CodeNotFound, NotFound("", "missing").Code)
	assert.Equal(t, CodeConflict, Conflict("", "dup").Code)
	assert.Equal(t, http.StatusForbidden, Forbidden("no").Status)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no").Status)
}
