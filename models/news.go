package models

import "gorm.io/gorm"

// News is a site announcement written by an administrator. The author
// reference survives account deletion as NULL.
type News struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	Title    string `gorm:"not null;size:200"`
	Content  string `gorm:"not null;size:10000"`
	AuthorID *uint  `gorm:"index"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
