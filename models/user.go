package models

import (
	"strings"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Roles are stored as a
// comma-joined list, e.g. "user,admin".
type User struct {
	gorm.Model
	PublicID     string `gorm:"size:100;uniqueIndex"`
	Email        string `gorm:"unique;not null;size:200"`
	Name         string `gorm:"not null;size:100"`
	PasswordHash string `gorm:"not null;size:200" json:"-"`
	Roles        string `gorm:"not null;default:user"`
	Decks        []Deck `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) RoleList() []string {
	return strings.Split(u.Roles, ",")
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}
