package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// canViewDeck reports whether the request may read the deck: public
// decks are open, private ones only to their owner.
func (db *DBHandler) canViewDeck(r *http.Request, deck *models.Deck) bool {
	if deck.IsPublic {
		return true
	}
	subject, ok := middleware.Subject(r)
	if !ok {
		return false
	}
	var owner models.User
	if err := db.Where("id = ?", deck.UserID).First(&owner).Error; err != nil {
		return false
	}
	return owner.PublicID == subject
}

// ownsDeck reports whether the authenticated user owns the deck.
func ownsDeck(user *models.User, deck *models.Deck) bool {
	return user != nil && deck.UserID == user.ID
}

func (db *DBHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var decks []models.Deck
	if err := db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&decks).Error; err != nil {
		http.Error(w, "Failed to fetch decks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (db *DBHandler) GetDecksForUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var owner models.User
	if err := db.Where("public_id = ?", userID).First(&owner).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	query := db.Where("user_id = ? AND is_public = ?", owner.ID, true)
	// Owners see their private decks too.
	if subject, ok := middleware.Subject(r); ok && subject == owner.PublicID {
		query = db.Where("user_id = ?", owner.ID)
	}

	var decks []models.Deck
	if err := query.Order("created_at DESC").Find(&decks).Error; err != nil {
		http.Error(w, "Failed to fetch decks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (db *DBHandler) GetDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	var deck models.Deck
	if err := db.Preload("Flashcards").Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if !db.canViewDeck(r, &deck) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (db *DBHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		Title       string `json:"title" validate:"required,max=100"`
		Description string `json:"description" validate:"max=1000"`
		IsPublic    bool   `json:"is_public"`
		Cards       []struct {
			Front    string `json:"front" validate:"required,max=500"`
			Back     string `json:"back" validate:"required,max=1000"`
			Example  string `json:"example" validate:"max=1000"`
			ImageURL string `json:"image_url" validate:"omitempty,url,max=500"`
		} `json:"cards" validate:"dive"`
	}
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if fields := validator.Fields(req); fields != nil {
		validationError(w, fields)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	deck := models.Deck{
		PublicID:    publicID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		UserID:      user.ID,
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	if err := tx.Create(&deck).Error; err != nil {
		tx.Rollback()
		db.Log.Error("failed to create deck", zap.Error(err))
		http.Error(w, "Failed to create deck", http.StatusInternalServerError)
		return
	}

	for _, c := range req.Cards {
		cardID, err := gonanoid.New()
		if err != nil {
			tx.Rollback()
			http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
			return
		}
		card := models.Flashcard{
			PublicID: cardID,
			Front:    c.Front,
			Back:     c.Back,
			Example:  c.Example,
			ImageURL: c.ImageURL,
			DeckID:   deck.ID,
		}
		if err := tx.Create(&card).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Failed to create flashcard", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	if err := db.Preload("Flashcards").First(&deck, deck.ID).Error; err != nil {
		http.Error(w, "Error retrieving created deck", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (db *DBHandler) UpdateDeckByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", r.PathValue("deckID")).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	if !ownsDeck(user, &deck) {
		http.Error(w, "Forbidden: You do not own this deck", http.StatusForbidden)
		return
	}

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		IsPublic    *bool   `json:"is_public,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		deck.Title = *req.Title
	}
	if req.Description != nil {
		deck.Description = *req.Description
	}
	if req.IsPublic != nil {
		deck.IsPublic = *req.IsPublic
	}

	// Validate the merged values, not just the fields present in the
	// request, so partial updates obey the same rules as creation.
	merged := struct {
		Title       string `validate:"required,max=100"`
		Description string `validate:"max=1000"`
	}{deck.Title, deck.Description}
	if fields := validator.Fields(merged); fields != nil {
		validationError(w, fields)
		return
	}

	if err := db.Save(&deck).Error; err != nil {
		http.Error(w, "Failed to update deck", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (db *DBHandler) DeleteDeckByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", r.PathValue("deckID")).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	if !ownsDeck(user, &deck) {
		http.Error(w, "Forbidden: You do not own this deck", http.StatusForbidden)
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	cardIDs := tx.Model(&models.Flashcard{}).Select("id").Where("deck_id = ?", deck.ID)
	if err := tx.Where("flashcard_id IN (?)", cardIDs).Delete(&models.CardProgress{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("deck_id = ?", deck.ID).Delete(&models.PracticeResult{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("deck_id = ?", deck.ID).Delete(&models.Flashcard{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		return
	}
	if err := tx.Delete(&deck).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
