package auth

import (
	"time"

	"github.com/flashdeck/flashdeck-api/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CreateToken mints an HS256 token for the given user public id. The
// issuer and audience must match what the request middleware validates.
func CreateToken(cfg config.AuthConfig, subject string, roles []string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub":   subject,
			"iss":   cfg.Issuer,
			"aud":   cfg.Audience,
			"iat":   now.Unix(),
			"exp":   now.Add(cfg.TokenTTL).Unix(),
			"roles": roles,
		})

	tokenString, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
