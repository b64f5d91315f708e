package handlers

import (
	"net/http"
	"time"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"gorm.io/gorm"
)

// StatsBucket is one aggregate window over practice results.
type StatsBucket struct {
	Sessions        int `json:"sessions"`
	CardsViewed     int `json:"cards_viewed"`
	CardsKnown      int `json:"cards_known"`
	CardsHard       int `json:"cards_hard"`
	DurationSeconds int `json:"duration_seconds"`
}

const statsSelect = `COUNT(*) AS sessions,
	COALESCE(SUM(cards_viewed), 0) AS cards_viewed,
	COALESCE(SUM(cards_known), 0) AS cards_known,
	COALESCE(SUM(cards_hard), 0) AS cards_hard,
	COALESCE(SUM(duration_seconds), 0) AS duration_seconds`

func resultStats(query *gorm.DB) (StatsBucket, error) {
	var bucket StatsBucket
	err := query.Select(statsSelect).Scan(&bucket).Error
	return bucket, err
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (db *DBHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
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
	if !deck.IsPublic && !ownsDeck(user, &deck) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	results := func() *gorm.DB {
		return db.Model(&models.PracticeResult{}).Where("deck_id = ? AND user_id = ?", deck.ID, user.ID)
	}

	allTime, err := resultStats(results())
	if err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}
	today, err := resultStats(results().Where("played_at >= ?", startOfToday()))
	if err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	var cardsTotal int64
	if err := db.Model(&models.Flashcard{}).Where("deck_id = ?", deck.ID).Count(&cardsTotal).Error; err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	var cardsKnown int64
	err = db.Model(&models.CardProgress{}).
		Joins("JOIN flashcards ON flashcards.id = card_progresses.flashcard_id").
		Where("card_progresses.user_id = ? AND flashcards.deck_id = ? AND card_progresses.known = ?", user.ID, deck.ID, true).
		Count(&cardsKnown).Error
	if err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deck_id":     deck.PublicID,
		"cards_total": cardsTotal,
		"cards_known": cardsKnown,
		"all_time":    allTime,
		"today":       today,
	})
}

func (db *DBHandler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	results := func() *gorm.DB {
		return db.Model(&models.PracticeResult{}).Where("user_id = ?", user.ID)
	}

	allTime, err := resultStats(results())
	if err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}
	today, err := resultStats(results().Where("played_at >= ?", startOfToday()))
	if err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	var decks int64
	if err := db.Model(&models.Deck{}).Where("user_id = ?", user.ID).Count(&decks).Error; err != nil {
		http.Error(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decks":    decks,
		"all_time": allTime,
		"today":    today,
	})
}

type cardProgressView struct {
	CardID       string     `json:"card_id"`
	Front        string     `json:"front"`
	TimesViewed  int        `json:"times_viewed"`
	TimesKnown   int        `json:"times_known"`
	TimesHard    int        `json:"times_hard"`
	Known        bool       `json:"known"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
}

func (db *DBHandler) GetDeckProgress(w http.ResponseWriter, r *http.Request) {
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
	if !deck.IsPublic && !ownsDeck(user, &deck) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var flashcards []models.Flashcard
	if err := db.Where("deck_id = ?", deck.ID).Find(&flashcards).Error; err != nil {
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	cardIDs := make([]uint, 0, len(flashcards))
	for _, c := range flashcards {
		cardIDs = append(cardIDs, c.ID)
	}

	progressByCard := map[uint]models.CardProgress{}
	if len(cardIDs) > 0 {
		var progress []models.CardProgress
		if err := db.Where("user_id = ? AND flashcard_id IN ?", user.ID, cardIDs).Find(&progress).Error; err != nil {
			http.Error(w, "Failed to fetch progress", http.StatusInternalServerError)
			return
		}
		for _, p := range progress {
			progressByCard[p.FlashcardID] = p
		}
	}

	views := make([]cardProgressView, 0, len(flashcards))
	for _, c := range flashcards {
		view := cardProgressView{CardID: c.PublicID, Front: c.Front}
		if p, ok := progressByCard[c.ID]; ok {
			view.TimesViewed = p.TimesViewed
			view.TimesKnown = p.TimesKnown
			view.TimesHard = p.TimesHard
			view.Known = p.Known
			view.LastReviewed = p.LastReviewed
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}
