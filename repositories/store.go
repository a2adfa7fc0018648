package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle.
type Store struct {
	db            *gorm.DB
	Users         UserRepository
	Roles         RoleRepository
	Books         BookRepository
	Authors       AuthorRepository
	AuthorInBooks AuthorInBookRepository
}

// NewStore builds every repository over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Roles:         NewRoleRepository(db),
		Books:         NewBookRepository(db),
		Authors:       NewAuthorRepository(db),
		AuthorInBooks: NewAuthorInBookRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
