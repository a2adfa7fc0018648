package repositories

import (
	"context"

	"bookstore/models"

	"gorm.io/gorm"
)

// BookRepository adds a title search to the generic repository.
type BookRepository interface {
	Repository[models.Book]
	// Search pages through books whose title contains query.
	Search(ctx context.Context, query string, page int, pageSize int) ([]models.Book, int64, error)
}

type bookRepository struct {
	Repository[models.Book]
	db *gorm.DB
}

var _ BookRepository = (*bookRepository)(nil)

// NewBookRepository creates a BookRepository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{Repository: NewRepository[models.Book](db), db: db}
}

func (r *bookRepository) Search(ctx context.Context, query string, page int, pageSize int) ([]models.Book, int64, error) {
	return paginate[models.Book](r.db.WithContext(ctx).Where("title LIKE ?", "%"+query+"%"), page, pageSize)
}
