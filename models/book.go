package models

import "time"

// BookCategory is the kind of publication.
type BookCategory string

const (
	CategoryBook      BookCategory = "book"
	CategoryJournal   BookCategory = "journal"
	CategoryNewspaper BookCategory = "newspaper"
)

// Book is a catalog entry. Books are hard deleted so that their author links
// go with them.
type Book struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Price       float64      `gorm:"not null;default:0" json:"price"`
	Currency    string       `gorm:"size:3;not null;default:USD" json:"currency"`
	Category    BookCategory `gorm:"size:16;not null;default:book" json:"category"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
