package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flashdeck/flashdeck-api/auth"
	"github.com/flashdeck/flashdeck-api/config"
	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/practice"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAuthConfig = config.AuthConfig{
	Secret:   strings.Repeat("0123456789abcdef", 2),
	Issuer:   "flashdeck-api",
	Audience: "flashdeck",
	TokenTTL: time.Hour,
}

// newTestServer builds a handler over a fresh sqlite database and the
// real route mux wrapped with the token middleware.
func newTestServer(t *testing.T) (*DBHandler, http.Handler) {
	t.Helper()

	db, err := config.Connect(config.DBConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)

	h := &DBHandler{
		DB:       db,
		Log:      zap.NewNop(),
		Sessions: practice.NewMemoryStore(time.Hour),
		Auth:     testAuthConfig,
	}

	mw, err := middleware.EnsureValidToken(testAuthConfig)
	require.NoError(t, err)

	return h, mw(Routes(h))
}

func createTestUser(t *testing.T, h *DBHandler, email, roles string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	publicID, err := gonanoid.New()
	require.NoError(t, err)

	user := models.User{
		PublicID:     publicID,
		Email:        email,
		Name:         strings.Split(email, "@")[0],
		PasswordHash: hash,
		Roles:        roles,
	}
	require.NoError(t, h.Create(&user).Error)
	return &user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.CreateToken(testAuthConfig, user.PublicID, user.RoleList())
	require.NoError(t, err)
	return token
}

// doJSON runs a request through the full middleware+mux stack.
func doJSON(t *testing.T, server http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func createTestDeck(t *testing.T, h *DBHandler, user *models.User, title string, isPublic bool, fronts ...string) *models.Deck {
	t.Helper()

	publicID, err := gonanoid.New()
	require.NoError(t, err)
	deck := models.Deck{
		PublicID: publicID,
		Title:    title,
		UserID:   user.ID,
		IsPublic: isPublic,
	}
	require.NoError(t, h.Create(&deck).Error)

	for _, front := range fronts {
		cardID, err := gonanoid.New()
		require.NoError(t, err)
		card := models.Flashcard{
			PublicID: cardID,
			Front:    front,
			Back:     "back of " + front,
			DeckID:   deck.ID,
		}
		require.NoError(t, h.Create(&card).Error)
	}

	require.NoError(t, h.Preload("Flashcards").First(&deck, deck.ID).Error)
	return &deck
}
