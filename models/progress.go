package models

import (
	"time"
)

// PracticeResult records one finished practice session over a deck.
// "Today" statistics are derived from PlayedAt, not stored separately.
type PracticeResult struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"not null;index"`
	User            User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	DeckID          uint      `gorm:"not null;index"`
	Deck            Deck      `gorm:"foreignKey:DeckID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CardsViewed     int       `gorm:"not null"`
	CardsKnown      int       `gorm:"not null"`
	CardsHard       int       `gorm:"not null"`
	DurationSeconds int       `gorm:"not null"`
	PlayedAt        time.Time `gorm:"autoCreateTime"`
}

// CardProgress is a user's all-time tally for a single card. Known is
// the flag the practice known-card filter excludes on; marking a card
// hard clears it.
type CardProgress struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_card_progress_user_card"`
	FlashcardID  uint       `gorm:"not null;uniqueIndex:idx_card_progress_user_card"`
	Flashcard    Flashcard  `gorm:"foreignKey:FlashcardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TimesViewed  int        `gorm:"not null;default:0"`
	TimesKnown   int        `gorm:"not null;default:0"`
	TimesHard    int        `gorm:"not null;default:0"`
	Known        bool       `gorm:"default:false"`
	LastReviewed *time.Time `gorm:"default:null"`
}
