package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v, err := NewVerifier("kitchen-secret")
	require.NoError(t, err)

	token, err := v.Generate(42, "wendy@mayfair.test", time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestVerifyRejects(t *testing.T) {
	v, _ := NewVerifier("kitchen-secret")
	other, _ := NewVerifier("someone-else")

	expired, err := v.Generate(1, "a@b.c", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, _ := other.Generate(1, "a@b.c", time.Hour)
	_, err = v.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	signed, err := noUser.SignedString([]byte("kitchen-secret"))
	require.NoError(t, err)
	_, err = v.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewVerifier("")
	assert.Error(t, err)
}
