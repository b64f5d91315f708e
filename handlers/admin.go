package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	"go.uber.org/zap"
)

func (db *DBHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (db *DBHandler) adminCount() (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Where("roles LIKE ?", "%admin%").Count(&count).Error
	return count, err
}

func (db *DBHandler) UpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	var target models.User
	if err := db.Where("public_id = ?", r.PathValue("userID")).First(&target).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var req struct {
		Roles []string `json:"roles" validate:"required,min=1,dive,oneof=user admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if fields := validator.Fields(req); fields != nil {
		validationError(w, fields)
		return
	}

	demoting := target.HasRole(models.RoleAdmin)
	for _, role := range req.Roles {
		if role == models.RoleAdmin {
			demoting = false
		}
	}
	if demoting {
		count, err := db.adminCount()
		if err != nil {
			http.Error(w, "Failed to update roles", http.StatusInternalServerError)
			return
		}
		if count <= 1 {
			http.Error(w, "Cannot remove the last administrator", http.StatusConflict)
			return
		}
	}

	target.Roles = strings.Join(req.Roles, ",")
	if err := db.Save(&target).Error; err != nil {
		http.Error(w, "Failed to update roles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (db *DBHandler) DeleteUserByID(w http.ResponseWriter, r *http.Request) {
	var target models.User
	if err := db.Where("public_id = ?", r.PathValue("userID")).First(&target).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if target.HasRole(models.RoleAdmin) {
		count, err := db.adminCount()
		if err != nil {
			http.Error(w, "Failed to delete user", http.StatusInternalServerError)
			return
		}
		if count <= 1 {
			http.Error(w, "Cannot delete the last administrator", http.StatusConflict)
			return
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	deckIDs := tx.Model(&models.Deck{}).Select("id").Where("user_id = ?", target.ID)
	cardIDs := tx.Model(&models.Flashcard{}).Select("id").Where("deck_id IN (?)", deckIDs)

	if err := tx.Where("user_id = ?", target.ID).Delete(&models.CardProgress{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("flashcard_id IN (?)", cardIDs).Delete(&models.CardProgress{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("user_id = ?", target.ID).Delete(&models.PracticeResult{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("deck_id IN (?)", deckIDs).Delete(&models.PracticeResult{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("deck_id IN (?)", deckIDs).Delete(&models.Flashcard{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("user_id = ?", target.ID).Delete(&models.Deck{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	if err := tx.Delete(&target).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	if admin, ok := middleware.UserFrom(r); ok {
		db.Log.Info("user deleted",
			zap.String("deleted", target.PublicID),
			zap.String("by", admin.PublicID))
	}
	w.WriteHeader(http.StatusNoContent)
}
