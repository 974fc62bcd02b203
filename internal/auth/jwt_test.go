package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)

	token, err := v.Sign("caller-1", "caller1@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "caller-1", claims.CallerID())
	assert.Equal(t, "caller1@example.com", claims.Email)
}

func TestVerifier_Expired(t *testing.T) {
	v := NewVerifier(testSecret)

	token, err := v.Sign("caller-1", "caller1@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_WrongSecret(t *testing.T) {
	token, err := NewVerifier(testSecret).Sign("caller-1", "", time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("another-secret-another-secret-00").Verify(token)
	assert.Error(t, err)
}

func TestVerifier_Garbage(t *testing.T) {
	_, err := NewVerifier(testSecret).Verify("not.a.token")
	assert.Error(t, err)
}
