package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/flashdeck/flashdeck-api/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = config.AuthConfig{
	Secret:   strings.Repeat("0123456789abcdef", 2),
	Issuer:   "flashdeck-api",
	Audience: "flashdeck",
	TokenTTL: time.Hour,
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not a hash", "anything"))
}

func TestCreateToken(t *testing.T) {
	tokenString, err := CreateToken(testConfig, "user-public-id", []string{"user", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testConfig.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-public-id", claims["sub"])
	assert.Equal(t, "flashdeck-api", claims["iss"])
	assert.Equal(t, "flashdeck", claims["aud"])

	roles, ok := claims["roles"].([]interface{})
	require.True(t, ok)
	assert.Len(t, roles, 2)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestCreateTokenBadSecretStillSigns(t *testing.T) {
	cfg := testConfig
	cfg.Secret = "short"
	tokenString, err := CreateToken(cfg, "subject", nil)
	require.NoError(t, err)

	// A different secret must not verify.
	_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testConfig.Secret), nil
	})
	assert.Error(t, err)
}
