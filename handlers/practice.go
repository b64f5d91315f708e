package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/models"
	"github.com/flashdeck/flashdeck-api/practice"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type practiceCardView struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back,omitempty"`
	Example  string `json:"example,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type practiceView struct {
	SessionID string            `json:"session_id"`
	Position  int               `json:"position"`
	Total     int               `json:"total"`
	Revealed  bool              `json:"revealed"`
	Known     int               `json:"known"`
	Hard      int               `json:"hard"`
	Card      *practiceCardView `json:"card,omitempty"`
}

// sessionView hides the back of the current card until it is revealed.
func sessionView(s *practice.Session) practiceView {
	view := practiceView{
		SessionID: s.ID,
		Position:  s.Index + 1,
		Total:     len(s.Cards),
		Revealed:  s.Revealed,
		Known:     s.Known,
		Hard:      s.Hard,
	}
	if card, ok := s.Current(); ok {
		cv := practiceCardView{
			ID:       card.PublicID,
			Front:    card.Front,
			ImageURL: card.ImageURL,
		}
		if s.Revealed {
			cv.Back = card.Back
			cv.Example = card.Example
		}
		view.Card = &cv
	}
	return view
}

func (db *DBHandler) StartPractice(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Shuffle      *bool `json:"shuffle,omitempty"`
		ExcludeKnown bool  `json:"exclude_known,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	shuffle := true
	if req.Shuffle != nil {
		shuffle = *req.Shuffle
	}

	var flashcards []models.Flashcard
	if err := db.Where("deck_id = ?", deck.ID).Find(&flashcards).Error; err != nil {
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	known := map[uint]bool{}
	if req.ExcludeKnown {
		cardIDs := make([]uint, 0, len(flashcards))
		for _, c := range flashcards {
			cardIDs = append(cardIDs, c.ID)
		}
		var progress []models.CardProgress
		if len(cardIDs) > 0 {
			if err := db.Where("user_id = ? AND flashcard_id IN ? AND known = ?", user.ID, cardIDs, true).Find(&progress).Error; err != nil {
				http.Error(w, "Failed to fetch progress", http.StatusInternalServerError)
				return
			}
		}
		for _, p := range progress {
			known[p.FlashcardID] = true
		}
	}

	cards := make([]practice.Card, 0, len(flashcards))
	for _, c := range flashcards {
		if known[c.ID] {
			continue
		}
		cards = append(cards, practice.Card{
			ID:       c.ID,
			PublicID: c.PublicID,
			Front:    c.Front,
			Back:     c.Back,
			Example:  c.Example,
			ImageURL: c.ImageURL,
		})
	}

	session, err := practice.New(user.ID, deck.ID, cards, shuffle)
	if err == practice.ErrEmptyDeck {
		http.Error(w, "No cards to practice", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "Failed to start practice", http.StatusInternalServerError)
		return
	}

	if err := db.Sessions.Save(r.Context(), session); err != nil {
		db.Log.Error("failed to save practice session", zap.Error(err))
		http.Error(w, "Failed to start practice", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView(session))
}

// practiceSession fetches the session from the store and checks it
// belongs to the caller.
func (db *DBHandler) practiceSession(w http.ResponseWriter, r *http.Request, user *models.User) (*practice.Session, bool) {
	session, err := db.Sessions.Get(r.Context(), r.PathValue("sessionID"))
	if err == practice.ErrNotFound {
		http.Error(w, "Practice session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		db.Log.Error("failed to load practice session", zap.Error(err))
		http.Error(w, "Failed to load practice session", http.StatusInternalServerError)
		return nil, false
	}
	if session.UserID != user.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return session, true
}

func (db *DBHandler) GetPractice(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	session, ok := db.practiceSession(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (db *DBHandler) RevealPractice(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	session, ok := db.practiceSession(w, r, user)
	if !ok {
		return
	}

	if err := session.Reveal(); err != nil {
		http.Error(w, "Practice session already finished", http.StatusConflict)
		return
	}
	if err := db.Sessions.Save(r.Context(), session); err != nil {
		http.Error(w, "Failed to save practice session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (db *DBHandler) AnswerPractice(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	session, ok := db.practiceSession(w, r, user)
	if !ok {
		return
	}

	var req struct {
		Outcome string `json:"outcome" validate:"required,oneof=known hard"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	err := session.Answer(practice.Outcome(req.Outcome))
	switch {
	case errors.Is(err, practice.ErrBadOutcome):
		http.Error(w, "Outcome must be known or hard", http.StatusBadRequest)
		return
	case errors.Is(err, practice.ErrNotRevealed):
		http.Error(w, "Reveal the card before answering", http.StatusConflict)
		return
	case errors.Is(err, practice.ErrFinished):
		http.Error(w, "Practice session already finished", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "Failed to record answer", http.StatusInternalServerError)
		return
	}

	if session.Done() {
		summary, err := db.finishSession(user, session)
		if err != nil {
			db.Log.Error("failed to persist practice result", zap.Error(err))
			http.Error(w, "Failed to save practice result", http.StatusInternalServerError)
			return
		}
		if err := db.Sessions.Delete(r.Context(), session.ID); err != nil {
			db.Log.Warn("failed to drop finished session", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	if err := db.Sessions.Save(r.Context(), session); err != nil {
		http.Error(w, "Failed to save practice session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (db *DBHandler) AbandonPractice(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	session, ok := db.practiceSession(w, r, user)
	if !ok {
		return
	}

	if err := db.Sessions.Delete(r.Context(), session.ID); err != nil {
		http.Error(w, "Failed to abandon practice session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type practiceSummary struct {
	Finished        bool   `json:"finished"`
	DeckID          string `json:"deck_id"`
	CardsViewed     int    `json:"cards_viewed"`
	CardsKnown      int    `json:"cards_known"`
	CardsHard       int    `json:"cards_hard"`
	DurationSeconds int    `json:"duration_seconds"`
}

// finishSession writes the durable rows for a completed walk: one
// result row plus per-card progress updates, in a single transaction.
func (db *DBHandler) finishSession(user *models.User, session *practice.Session) (*practiceSummary, error) {
	now := time.Now()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	result := models.PracticeResult{
		UserID:          user.ID,
		DeckID:          session.DeckID,
		CardsViewed:     session.Viewed,
		CardsKnown:      session.Known,
		CardsHard:       session.Hard,
		DurationSeconds: int(session.Elapsed().Seconds()),
	}
	if err := tx.Create(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for cardID, outcome := range session.Outcomes {
		// Cards deleted mid-session are skipped.
		var card models.Flashcard
		if err := tx.First(&card, cardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			tx.Rollback()
			return nil, err
		}

		var progress models.CardProgress
		err := tx.Where("user_id = ? AND flashcard_id = ?", user.ID, cardID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.CardProgress{UserID: user.ID, FlashcardID: cardID}
		} else if err != nil {
			tx.Rollback()
			return nil, err
		}

		progress.TimesViewed++
		switch outcome {
		case practice.OutcomeKnown:
			progress.TimesKnown++
			progress.Known = true
		case practice.OutcomeHard:
			progress.TimesHard++
			progress.Known = false
		}
		progress.LastReviewed = &now

		if err := tx.Save(&progress).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&models.Deck{}).Where("id = ?", session.DeckID).Update("last_studied", now).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	var deck models.Deck
	deckPublicID := ""
	if err := db.First(&deck, session.DeckID).Error; err == nil {
		deckPublicID = deck.PublicID
	}

	return &practiceSummary{
		Finished:        true,
		DeckID:          deckPublicID,
		CardsViewed:     result.CardsViewed,
		CardsKnown:      result.CardsKnown,
		CardsHard:       result.CardsHard,
		DurationSeconds: result.DurationSeconds,
	}, nil
}
