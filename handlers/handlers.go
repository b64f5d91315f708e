package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck-api/config"
	"github.com/flashdeck/flashdeck-api/pkg/validator"
	"github.com/flashdeck/flashdeck-api/practice"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DBHandler struct {
	*gorm.DB
	Log      *zap.Logger
	Sessions practice.Store
	Auth     config.AuthConfig
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// validationError surfaces per-field messages for inline display.
func validationError(w http.ResponseWriter, fields validator.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}
