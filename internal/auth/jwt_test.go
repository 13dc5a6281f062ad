package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", 15*time.Minute)

	token, err := m.Generate(5, "jane@example.com", "USER")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "atelier", claims.Issuer)
}

func TestJWTManager_Validate_WrongSecret(t *testing.T) {
	m := NewJWTManager("secret-one-that-signed-the-token!!!!", 15*time.Minute)
	other := NewJWTManager("a-completely-different-signing-key!!", 15*time.Minute)

	token, err := m.Generate(5, "jane@example.com", "USER")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_Validate_Expired(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", -time.Minute)

	token, err := m.Generate(5, "jane@example.com", "USER")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_Validate_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-characters!!", 15*time.Minute)

	_, err := m.Validate("not.a.token")
	assert.Error(t, err)
}
