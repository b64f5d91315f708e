package handlers

import (
	"net/http"
	"time"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"golang.org/x/time/rate"
)

// Routes mounts every endpoint. Auth claims are extracted by the outer
// token middleware; per-route user and role checks happen here.
func Routes(h *DBHandler) *http.ServeMux {
	mux := http.NewServeMux()

	loginLimiter := middleware.NewLoginLimiter(rate.Every(time.Second), 5)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Wrap(h.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireUser(h.DB, h.Me))
	mux.HandleFunc("PUT /api/me", middleware.RequireUser(h.DB, h.UpdateMe))
	mux.HandleFunc("GET /api/me/stats", middleware.RequireUser(h.DB, h.GetMyStats))

	// Decks
	mux.HandleFunc("GET /api/decks", middleware.RequireUser(h.DB, h.ListDecks))
	mux.HandleFunc("POST /api/decks", middleware.RequireUser(h.DB, h.CreateDeck))
	mux.HandleFunc("GET /api/decks/{deckID}", h.GetDeckByID)
	mux.HandleFunc("PUT /api/decks/{deckID}", middleware.RequireUser(h.DB, h.UpdateDeckByID))
	mux.HandleFunc("DELETE /api/decks/{deckID}", middleware.RequireUser(h.DB, h.DeleteDeckByID))

	// User decks
	mux.HandleFunc("GET /api/users/{userID}/decks", h.GetDecksForUser)

	// Flashcards
	mux.HandleFunc("POST /api/decks/{deckID}/cards", middleware.RequireUser(h.DB, h.CreateCard))
	mux.HandleFunc("GET /api/decks/{deckID}/cards", h.GetCardsForDeck)
	mux.HandleFunc("GET /api/decks/{deckID}/cards/{cardID}", h.GetCardByID)
	mux.HandleFunc("PUT /api/decks/{deckID}/cards/{cardID}", middleware.RequireUser(h.DB, h.UpdateCardByID))
	mux.HandleFunc("DELETE /api/decks/{deckID}/cards/{cardID}", middleware.RequireUser(h.DB, h.DeleteCardByID))

	// Practice
	mux.HandleFunc("POST /api/decks/{deckID}/practice", middleware.RequireUser(h.DB, h.StartPractice))
	mux.HandleFunc("GET /api/practice/{sessionID}", middleware.RequireUser(h.DB, h.GetPractice))
	mux.HandleFunc("POST /api/practice/{sessionID}/reveal", middleware.RequireUser(h.DB, h.RevealPractice))
	mux.HandleFunc("POST /api/practice/{sessionID}/answer", middleware.RequireUser(h.DB, h.AnswerPractice))
	mux.HandleFunc("DELETE /api/practice/{sessionID}", middleware.RequireUser(h.DB, h.AbandonPractice))

	// Statistics
	mux.HandleFunc("GET /api/decks/{deckID}/stats", middleware.RequireUser(h.DB, h.GetDeckStats))
	mux.HandleFunc("GET /api/decks/{deckID}/progress", middleware.RequireUser(h.DB, h.GetDeckProgress))

	// News
	mux.HandleFunc("GET /api/news", h.ListNews)
	mux.HandleFunc("GET /api/news/{newsID}", h.GetNewsByID)
	mux.HandleFunc("POST /api/news", middleware.RequireRole(h.DB, models.RoleAdmin, h.CreateNews))
	mux.HandleFunc("PUT /api/news/{newsID}", middleware.RequireRole(h.DB, models.RoleAdmin, h.UpdateNewsByID))
	mux.HandleFunc("DELETE /api/news/{newsID}", middleware.RequireRole(h.DB, models.RoleAdmin, h.DeleteNewsByID))

	// Admin
	mux.HandleFunc("GET /api/admin/users", middleware.RequireRole(h.DB, models.RoleAdmin, h.ListUsers))
	mux.HandleFunc("PUT /api/admin/users/{userID}/roles", middleware.RequireRole(h.DB, models.RoleAdmin, h.UpdateUserRoles))
	mux.HandleFunc("DELETE /api/admin/users/{userID}", middleware.RequireRole(h.DB, models.RoleAdmin, h.DeleteUserByID))

	return mux
}
