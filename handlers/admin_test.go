package handlers

import (
	"net/http"
	"testing"

	"github.com/flashdeck/flashdeck-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersRequiresAdmin(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")
	user := createTestUser(t, h, "user@example.com", models.RoleUser)

	rec := doJSON(t, server, http.MethodGet, "/api/admin/users", tokenFor(t, user), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/admin/users", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	decodeBody(t, rec, &users)
	assert.Len(t, users, 2)
}

func TestUpdateUserRoles(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")
	user := createTestUser(t, h, "user@example.com", models.RoleUser)

	rec := doJSON(t, server, http.MethodPut, "/api/admin/users/"+user.PublicID+"/roles", tokenFor(t, admin), map[string]interface{}{
		"roles": []string{"user", "admin"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var promoted models.User
	require.NoError(t, h.First(&promoted, user.ID).Error)
	assert.True(t, promoted.HasRole(models.RoleAdmin))

	// With two admins, demoting one is allowed.
	rec = doJSON(t, server, http.MethodPut, "/api/admin/users/"+admin.PublicID+"/roles", tokenFor(t, admin), map[string]interface{}{
		"roles": []string{"user"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCannotDemoteLastAdmin(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")

	rec := doJSON(t, server, http.MethodPut, "/api/admin/users/"+admin.PublicID+"/roles", tokenFor(t, admin), map[string]interface{}{
		"roles": []string{"user"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var still models.User
	require.NoError(t, h.First(&still, admin.ID).Error)
	assert.True(t, still.HasRole(models.RoleAdmin))
}

func TestUpdateUserRolesValidation(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")
	user := createTestUser(t, h, "user@example.com", models.RoleUser)

	rec := doJSON(t, server, http.MethodPut, "/api/admin/users/"+user.PublicID+"/roles", tokenFor(t, admin), map[string]interface{}{
		"roles": []string{"superuser"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")
	user := createTestUser(t, h, "user@example.com", models.RoleUser)
	deck := createTestDeck(t, h, user, "Theirs", false, "q1")

	rec := doJSON(t, server, http.MethodDelete, "/api/admin/users/"+user.PublicID, tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, h.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, h.Model(&models.Deck{}).Where("id = ?", deck.ID).Count(&count).Error)
	assert.Zero(t, count, "decks go with their owner")
	require.NoError(t, h.Model(&models.Flashcard{}).Where("deck_id = ?", deck.ID).Count(&count).Error)
	assert.Zero(t, count, "cards go with their deck")
}

func TestCannotDeleteLastAdmin(t *testing.T) {
	h, server := newTestServer(t)
	admin := createTestUser(t, h, "admin@example.com", "user,admin")

	rec := doJSON(t, server, http.MethodDelete, "/api/admin/users/"+admin.PublicID, tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var count int64
	require.NoError(t, h.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
