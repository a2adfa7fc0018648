package models

import "time"

// AuthorInBook links an Author to a Book. The pair of keys is its identity.
type AuthorInBook struct {
	AuthorID  uint `gorm:"primaryKey;autoIncrement:false"`
	BookID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	Author    Author `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Book      Book   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
