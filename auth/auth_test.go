package auth

import (
	"context"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/learntree-api/config"
)

var testAuth = config.AuthConfig{
	Enabled:   true,
	SecretKey: "test-secret",
	Issuer:    "learntree-api",
	Audience:  "learntree-app",
}

func newValidator(t *testing.T, cfg config.AuthConfig) *validator.Validator {
	t.Helper()
	v, err := validator.New(
		func(context.Context) (any, error) { return []byte(cfg.SecretKey), nil },
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
	)
	require.NoError(t, err)
	return v
}

func TestCreateToken_Validates(t *testing.T) {
	token, err := CreateToken(testAuth, "user-1", "Ada", "ada@example.com")
	require.NoError(t, err)

	claims, err := newValidator(t, testAuth).ValidateToken(context.Background(), token)
	require.NoError(t, err)

	validated, ok := claims.(*validator.ValidatedClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", validated.RegisteredClaims.Subject)
	assert.Equal(t, "learntree-api", validated.RegisteredClaims.Issuer)
	assert.NotZero(t, validated.RegisteredClaims.Expiry)
}

func TestCreateToken_RequiresSecret(t *testing.T) {
	_, err := CreateToken(config.AuthConfig{}, "user-1", "", "")
	assert.Error(t, err)
}

func TestCreateToken_RejectedWithOtherSecretOrAudience(t *testing.T) {
	token, err := CreateToken(testAuth, "user-1", "", "")
	require.NoError(t, err)

	other := testAuth
	other.SecretKey = "other"
	_, err = newValidator(t, other).ValidateToken(context.Background(), token)
	assert.Error(t, err)

	other = testAuth
	other.Audience = "someone-else"
	_, err = newValidator(t, other).ValidateToken(context.Background(), token)
	assert.Error(t, err)
}
