package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck-api/auth"
	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

func (db *DBHandler) Register(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Name     string `json:"name" validate:"required,max=100"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	if fields := validator.Fields(req); fields != nil {
		validationError(w, fields)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	// The duplicate check, the first-user-admin grant and the insert
	// share one transaction so concurrent registrations cannot mint a
	// second admin or slip past the email check.
	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	var existing models.User
	if err := tx.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		tx.Rollback()
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	// The first account gets the admin role so a fresh install can be
	// administered at all.
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	roles := models.RoleUser
	if count == 0 {
		roles = models.RoleUser + "," + models.RoleAdmin
	}

	user := models.User{
		PublicID:     publicID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		// A concurrent insert surfaces here as a unique-index
		// violation rather than in the check above.
		var raced models.User
		if db.Where("email = ?", req.Email).First(&raced).Error == nil {
			http.Error(w, "Email already registered", http.StatusConflict)
			return
		}
		db.Log.Error("failed to create user", zap.Error(err))
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (db *DBHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if fields := validator.Fields(req); fields != nil {
		validationError(w, fields)
		return
	}

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := auth.CreateToken(db.Auth, user.PublicID, user.RoleList())
	if err != nil {
		db.Log.Error("failed to mint token", zap.Error(err))
		http.Error(w, "Failed to create token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(db.Auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   db.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (db *DBHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   db.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (db *DBHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if fields := validator.Fields(req); fields != nil {
		validationError(w, fields)
		return
	}

	user.Name = req.Name
	if err := db.Save(user).Error; err != nil {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
