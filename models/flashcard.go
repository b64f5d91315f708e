package models

import (
	"gorm.io/gorm"
)

// Flashcard represents an individual flashcard
type Flashcard struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	Front    string `gorm:"not null;size:500"`
	Back     string `gorm:"not null;size:1000"`
	Example  string `gorm:"size:1000"`
	ImageURL string `gorm:"size:500"`

	DeckID uint `gorm:"not null;index"`
	Deck   Deck `gorm:"foreignKey:DeckID" json:"-"`
}
