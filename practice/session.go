package practice

import (
	"errors"
	"math/rand"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Outcome is the grade a user gives the current card after revealing it.
type Outcome string

const (
	OutcomeKnown Outcome = "known"
	OutcomeHard  Outcome = "hard"
)

var (
	ErrEmptyDeck   = errors.New("practice: no cards to practice")
	ErrNotRevealed = errors.New("practice: current card not revealed")
	ErrFinished    = errors.New("practice: session already finished")
	ErrBadOutcome  = errors.New("practice: unknown outcome")
	ErrNotFound    = errors.New("practice: session not found")
)

// Card is a snapshot of a flashcard taken when the session starts, so
// the walk is unaffected by concurrent deck edits. The JSON tags are
// for store serialization, not for API responses.
type Card struct {
	ID       uint   `json:"card_id"`
	PublicID string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Example  string `json:"example,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Session is an ephemeral walk over a deck's cards. It lives in a Store
// until it finishes or expires; only finishing writes anything durable.
type Session struct {
	ID        string           `json:"id"`
	UserID    uint             `json:"user_id"`
	DeckID    uint             `json:"deck_id"`
	Cards     []Card           `json:"cards"`
	Index     int              `json:"index"`
	Revealed  bool             `json:"revealed"`
	Viewed    int              `json:"viewed"`
	Known     int              `json:"known"`
	Hard      int              `json:"hard"`
	Outcomes  map[uint]Outcome `json:"outcomes"`
	StartedAt time.Time        `json:"started_at"`
}

func New(userID, deckID uint, cards []Card, shuffle bool) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	order := make([]Card, len(cards))
	copy(order, cards)
	if shuffle {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		DeckID:    deckID,
		Cards:     order,
		Outcomes:  make(map[uint]Outcome),
		StartedAt: time.Now(),
	}, nil
}

func (s *Session) Current() (Card, bool) {
	if s.Done() {
		return Card{}, false
	}
	return s.Cards[s.Index], true
}

func (s *Session) Done() bool {
	return s.Index >= len(s.Cards)
}

func (s *Session) Remaining() int {
	return len(s.Cards) - s.Index
}

// Reveal shows the back of the current card. Revealing counts the card
// as viewed; revealing twice does not count it again.
func (s *Session) Reveal() error {
	if s.Done() {
		return ErrFinished
	}
	if !s.Revealed {
		s.Revealed = true
		s.Viewed++
	}
	return nil
}

// Answer grades the current card and advances the cursor. The card must
// be revealed first.
func (s *Session) Answer(outcome Outcome) error {
	if s.Done() {
		return ErrFinished
	}
	if !s.Revealed {
		return ErrNotRevealed
	}

	card := s.Cards[s.Index]
	switch outcome {
	case OutcomeKnown:
		s.Known++
	case OutcomeHard:
		s.Hard++
	default:
		return ErrBadOutcome
	}
	s.Outcomes[card.ID] = outcome

	s.Index++
	s.Revealed = false
	return nil
}

func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}
