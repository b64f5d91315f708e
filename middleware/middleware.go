package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/flashdeck/flashdeck-api/config"
	"github.com/flashdeck/flashdeck-api/models"
	"gorm.io/gorm"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

type contextKey string

const userKey contextKey = "user"

// CustomClaims carries the role list minted into our own tokens.
type CustomClaims struct {
	Roles []string `json:"roles"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken validates the auth token on every request and puts
// the claims in the request context. Credentials are optional here;
// RequireUser and RequireRole enforce them per route. The token is read
// from the Authorization header or the auth_token cookie.
func EnsureValidToken(cfg config.AuthConfig) (func(next http.Handler) http.Handler, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithCredentialsOptional(true),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.CookieTokenExtractor("auth_token"),
		)),
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
		}),
	)

	return mw.CheckJWT, nil
}

// Subject returns the validated token subject (the user public id), if
// the request carried valid credentials.
func Subject(r *http.Request) (string, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

// RequireUser loads the authenticated user from the DB and attaches it
// to context for downstream handlers.
func RequireUser(db *gorm.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := Subject(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var user models.User
		if err := db.Where("public_id = ?", subject).First(&user).Error; err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireRole gates a route on one of the user's roles.
func RequireRole(db *gorm.DB, role string, next http.HandlerFunc) http.HandlerFunc {
	return RequireUser(db, func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok || !user.HasRole(role) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the user attached by RequireUser.
func UserFrom(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userKey).(*models.User)
	return user, ok
}
