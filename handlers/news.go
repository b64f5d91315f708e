package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (db *DBHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	var news []models.News
	if err := db.Preload("Author").Order("created_at DESC").Find(&news).Error; err != nil {
		http.Error(w, "Failed to fetch news", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

func (db *DBHandler) GetNewsByID(w http.ResponseWriter, r *http.Request) {
	var item models.News
	if err := db.Preload("Author").Where("public_id = ?", r.PathValue("newsID")).First(&item).Error; err != nil {
		http.Error(w, "News item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (db *DBHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		Title   string `json:"title" validate:"required,max=200"`
		Content string `json:"content" validate:"required,max=10000"`
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

	item := models.News{
		PublicID: publicID,
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: &user.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		http.Error(w, "Failed to create news item", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (db *DBHandler) UpdateNewsByID(w http.ResponseWriter, r *http.Request) {
	var item models.News
	if err := db.Where("public_id = ?", r.PathValue("newsID")).First(&item).Error; err != nil {
		http.Error(w, "News item not found", http.StatusNotFound)
		return
	}

	var req struct {
		Title   *string `json:"title,omitempty"`
		Content *string `json:"content,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Content != nil {
		item.Content = *req.Content
	}

	// Validate the merged values so partial updates obey the same
	// rules as creation.
	merged := struct {
		Title   string `validate:"required,max=200"`
		Content string `validate:"required,max=10000"`
	}{item.Title, item.Content}
	if fields := validator.Fields(merged); fields != nil {
		validationError(w, fields)
		return
	}

	if err := db.Save(&item).Error; err != nil {
		http.Error(w, "Failed to update news item", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (db *DBHandler) DeleteNewsByID(w http.ResponseWriter, r *http.Request) {
	result := db.Where("public_id = ?", r.PathValue("newsID")).Delete(&models.News{})
	if result.Error != nil {
		http.Error(w, "Failed to delete news item", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "News item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
