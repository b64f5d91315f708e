package models

import (
	"time"

	"gorm.io/gorm"
)

// Deck represents a named collection of flashcards owned by a user
type Deck struct {
	gorm.Model
	PublicID    string `gorm:"size:100;uniqueIndex"`
	Title       string `gorm:"not null;size:100"`
	Description string `gorm:"size:1000"`
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`

	Flashcards []Flashcard `gorm:"foreignKey:DeckID"`

	IsPublic    bool       `gorm:"default:false"`
	LastStudied *time.Time `gorm:"default:null"`
}
