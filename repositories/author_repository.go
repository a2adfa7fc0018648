package repositories

import (
	"context"

	"bookstore/models"

	"gorm.io/gorm"
)

// AuthorRepository adds a name search to the generic repository.
type AuthorRepository interface {
	Repository[models.Author]
	Search(ctx context.Context, query string, page int, pageSize int) ([]models.Author, int64, error)
}

type authorRepository struct {
	Repository[models.Author]
	db *gorm.DB
}

var _ AuthorRepository = (*authorRepository)(nil)

// NewAuthorRepository creates an AuthorRepository.
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{Repository: NewRepository[models.Author](db), db: db}
}

func (r *authorRepository) Search(ctx context.Context, query string, page int, pageSize int) ([]models.Author, int64, error) {
	return paginate[models.Author](r.db.WithContext(ctx).Where("name LIKE ?", "%"+query+"%"), page, pageSize)
}
