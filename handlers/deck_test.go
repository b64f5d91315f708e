package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/flashdeck/flashdeck-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeckWithCards(t *testing.T) {
	h, server := newTestServer(t)
	user := createTestUser(t, h, "owner@example.com", models.RoleUser)

	rec := doJSON(t, server, http.MethodPost, "/api/decks", tokenFor(t, user), map[string]interface{}{
		"title":       "Spanish basics",
		"description": "Greetings and numbers",
		"cards": []map[string]string{
			{"front": "hola", "back": "hello"},
			{"front": "adiós", "back": "goodbye"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var deck models.Deck
	decodeBody(t, rec, &deck)
	assert.Equal(t, "Spanish basics", deck.Title)
	assert.Len(t, deck.Flashcards, 2)
	assert.NotEmpty(t, deck.PublicID)
}

func TestCreateDeckValidation(t *testing.T) {
	h, server := newTestServer(t)
	user := createTestUser(t, h, "owner@example.com", models.RoleUser)

	rec := doJSON(t, server, http.MethodPost, "/api/decks", tokenFor(t, user), map[string]interface{}{
		"title": "",
		"cards": []map[string]string{{"front": "a", "back": ""}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDeckVisibility(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	other := createTestUser(t, h, "other@example.com", models.RoleUser)

	private := createTestDeck(t, h, owner, "Private", false, "q1")
	public := createTestDeck(t, h, owner, "Public", true, "q2")

	// Owner sees both.
	rec := doJSON(t, server, http.MethodGet, "/api/decks/"+private.PublicID, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Strangers and anonymous callers are rejected on the private one.
	rec = doJSON(t, server, http.MethodGet, "/api/decks/"+private.PublicID, tokenFor(t, other), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, server, http.MethodGet, "/api/decks/"+private.PublicID, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Public decks are readable by anyone.
	rec = doJSON(t, server, http.MethodGet, "/api/decks/"+public.PublicID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListDecksOwnOnly(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	other := createTestUser(t, h, "other@example.com", models.RoleUser)
	createTestDeck(t, h, owner, "Mine", false)
	createTestDeck(t, h, other, "Theirs", true)

	rec := doJSON(t, server, http.MethodGet, "/api/decks", tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var decks []models.Deck
	decodeBody(t, rec, &decks)
	require.Len(t, decks, 1)
	assert.Equal(t, "Mine", decks[0].Title)
}

func TestGetDecksForUser(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	createTestDeck(t, h, owner, "Hidden", false)
	createTestDeck(t, h, owner, "Shared", true)

	// Strangers only see public decks.
	rec := doJSON(t, server, http.MethodGet, "/api/users/"+owner.PublicID+"/decks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var decks []models.Deck
	decodeBody(t, rec, &decks)
	require.Len(t, decks, 1)
	assert.Equal(t, "Shared", decks[0].Title)

	// The owner sees everything.
	rec = doJSON(t, server, http.MethodGet, "/api/users/"+owner.PublicID+"/decks", tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &decks)
	assert.Len(t, decks, 2)
}

func TestUpdateDeckPartial(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	other := createTestUser(t, h, "other@example.com", models.RoleUser)
	deck := createTestDeck(t, h, owner, "Before", false)
	require.NoError(t, h.Model(deck).Update("description", "keep me").Error)

	rec := doJSON(t, server, http.MethodPut, "/api/decks/"+deck.PublicID, tokenFor(t, other), map[string]string{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/decks/"+deck.PublicID, tokenFor(t, owner), map[string]string{
		"title": "After",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Deck
	require.NoError(t, h.First(&updated, deck.ID).Error)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "keep me", updated.Description, "unspecified fields keep their value")
}

func TestUpdateDeckValidation(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	deck := createTestDeck(t, h, owner, "Before", false)

	rec := doJSON(t, server, http.MethodPut, "/api/decks/"+deck.PublicID, tokenFor(t, owner), map[string]string{
		"title": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Length limits apply to partial updates just like creation.
	rec = doJSON(t, server, http.MethodPut, "/api/decks/"+deck.PublicID, tokenFor(t, owner), map[string]string{
		"title": strings.Repeat("x", 101),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &body)
	assert.Contains(t, body.Fields, "title")

	var unchanged models.Deck
	require.NoError(t, h.First(&unchanged, deck.ID).Error)
	assert.Equal(t, "Before", unchanged.Title)
}

func TestDeleteDeck(t *testing.T) {
	h, server := newTestServer(t)
	owner := createTestUser(t, h, "owner@example.com", models.RoleUser)
	deck := createTestDeck(t, h, owner, "Doomed", false, "q1", "q2")

	rec := doJSON(t, server, http.MethodDelete, "/api/decks/"+deck.PublicID, tokenFor(t, owner), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/decks/"+deck.PublicID, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var cards int64
	require.NoError(t, h.Model(&models.Flashcard{}).Where("deck_id = ?", deck.ID).Count(&cards).Error)
	assert.Zero(t, cards, "cards should be deleted with the deck")
}
