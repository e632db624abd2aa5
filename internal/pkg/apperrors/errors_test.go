// internal/pkg/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConstructorsCarryStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(Validation("bad input")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(Conflict("duplicate")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(InvalidState("not allowed")))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(Unauthorized("who are you")))
	assert.Equal(t, http.StatusForbidden, StatusCode(Forbidden("not yours")))
	assert.Equal(t, http.StatusNotFound, StatusCode(NotFound("gone")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(Internal("boom")))
}

func TestInsufficientStock(t *testing.T) {
	err := InsufficientStock("Rocket Kit")
	assert.Equal(t, "Rocket Kit has insufficient stock", err.Error())
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestFromDB(t *testing.T) {
	err := FromDB(gorm.ErrRecordNotFound, "Product not found")
	assert.Equal(t, "Product not found", err.Error())
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	err = FromDB(gorm.ErrDuplicatedKey, "ignored")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))

	err = FromDB(gorm.ErrForeignKeyViolated, "ignored")
	assert.Equal(t, "Invalid reference to another table", err.Error())

	plain := errors.New("connection refused")
	assert.Equal(t, plain, FromDB(plain, "ignored"))
}

func TestStatusCode_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}

func TestUserMessage_MasksInternalErrors(t *testing.T) {
	assert.Equal(t, "Internal Server Error", UserMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "gone", UserMessage(NotFound("gone")))
}

func TestUserMessage_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading cart: %w", NotFound("Cart item not found"))
	assert.Equal(t, "Cart item not found", UserMessage(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
}

func TestIs(t *testing.T) {
	err := Validation("bad")
	require.True(t, Is(err, http.StatusBadRequest))
	require.False(t, Is(err, http.StatusNotFound))
	require.False(t, Is(errors.New("plain"), http.StatusBadRequest))
}
