package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (db *DBHandler) GetCardsForDeck(w http.ResponseWriter, r *http.Request) {
	var deck models.Deck
	if err := db.Where("public_id = ?", r.PathValue("deckID")).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	if !db.canViewDeck(r, &deck) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var flashcards []models.Flashcard
	if err := db.Where("deck_id = ?", deck.ID).Find(&flashcards).Error; err != nil {
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, flashcards)
}

func (db *DBHandler) GetCardByID(w http.ResponseWriter, r *http.Request) {
	var deck models.Deck
	if err := db.Where("public_id = ?", r.PathValue("deckID")).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	if !db.canViewDeck(r, &deck) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND deck_id = ?", r.PathValue("cardID"), deck.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, flashcard)
}

func (db *DBHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
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

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		Front    string `json:"front" validate:"required,max=500"`
		Back     string `json:"back" validate:"required,max=1000"`
		Example  string `json:"example" validate:"max=1000"`
		ImageURL string `json:"image_url" validate:"omitempty,url,max=500"`
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

	flashcard := models.Flashcard{
		PublicID: publicID,
		Front:    req.Front,
		Back:     req.Back,
		Example:  req.Example,
		ImageURL: req.ImageURL,
		DeckID:   deck.ID,
	}
	if err := db.Create(&flashcard).Error; err != nil {
		http.Error(w, "Failed to create flashcard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, flashcard)
}

func (db *DBHandler) UpdateCardByID(w http.ResponseWriter, r *http.Request) {
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

	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND deck_id = ?", r.PathValue("cardID"), deck.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	var req struct {
		Front    *string `json:"front,omitempty"`
		Back     *string `json:"back,omitempty"`
		Example  *string `json:"example,omitempty"`
		ImageURL *string `json:"image_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Front != nil {
		flashcard.Front = *req.Front
	}
	if req.Back != nil {
		flashcard.Back = *req.Back
	}
	if req.Example != nil {
		flashcard.Example = *req.Example
	}
	if req.ImageURL != nil {
		flashcard.ImageURL = *req.ImageURL
	}

	// Validate the merged values so partial updates obey the same
	// rules as creation.
	merged := struct {
		Front    string `validate:"required,max=500"`
		Back     string `validate:"required,max=1000"`
		Example  string `validate:"max=1000"`
		ImageURL string `validate:"omitempty,url,max=500"`
	}{flashcard.Front, flashcard.Back, flashcard.Example, flashcard.ImageURL}
	if fields := validator.Fields(merged); fields != nil {
		validationError(w, fields)
		return
	}

	if err := db.Save(&flashcard).Error; err != nil {
		http.Error(w, "Failed to update flashcard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, flashcard)
}

func (db *DBHandler) DeleteCardByID(w http.ResponseWriter, r *http.Request) {
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

	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND deck_id = ?", r.PathValue("cardID"), deck.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("flashcard_id = ?", flashcard.ID).Delete(&models.CardProgress{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete flashcard", http.StatusInternalServerError)
		return
	}
	result := tx.Delete(&flashcard)
	if result.Error != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete flashcard", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}
	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
