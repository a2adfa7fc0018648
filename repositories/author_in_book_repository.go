package repositories

import (
	"context"

	"bookstore/models"

	"gorm.io/gorm"
)

// AuthorInBookRepository manages the author/book join rows. A link is
// addressed by its pair of foreign keys.
type AuthorInBookRepository interface {
	Create(ctx context.Context, link *models.AuthorInBook) error
	FindAll(ctx context.Context, page int, pageSize int) ([]models.AuthorInBook, int64, error)
	Exists(ctx context.Context, authorID, bookID uint) (bool, error)
	Unlink(ctx context.Context, authorID, bookID uint) error
	DeleteByBook(ctx context.Context, bookID uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
	AuthorsOfBook(ctx context.Context, bookID uint) ([]models.Author, error)
	BooksOfAuthor(ctx context.Context, authorID uint) ([]models.Book, error)
}

type authorInBookRepository struct {
	db *gorm.DB
}

var _ AuthorInBookRepository = (*authorInBookRepository)(nil)

// NewAuthorInBookRepository creates an AuthorInBookRepository.
func NewAuthorInBookRepository(db *gorm.DB) AuthorInBookRepository {
	return &authorInBookRepository{db: db}
}

func (r *authorInBookRepository) Create(ctx context.Context, link *models.AuthorInBook) error {
	return r.db.WithContext(ctx).Omit("Author", "Book").Create(link).Error
}

func (r *authorInBookRepository) FindAll(ctx context.Context, page int, pageSize int) ([]models.AuthorInBook, int64, error) {
	return paginateBy[models.AuthorInBook](r.db.WithContext(ctx), "book_id, author_id", page, pageSize)
}

func (r *authorInBookRepository) Exists(ctx context.Context, authorID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AuthorInBook{}).
		Where("author_id = ? AND book_id = ?", authorID, bookID).
		Count(&count).Error
	return count > 0, err
}

func (r *authorInBookRepository) Unlink(ctx context.Context, authorID, bookID uint) error {
	result := r.db.WithContext(ctx).
		Where("author_id = ? AND book_id = ?", authorID, bookID).
		Delete(&models.AuthorInBook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *authorInBookRepository) DeleteByBook(ctx context.Context, bookID uint) error {
	return r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&models.AuthorInBook{}).Error
}

func (r *authorInBookRepository) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.AuthorInBook{}).Error
}

func (r *authorInBookRepository) AuthorsOfBook(ctx context.Context, bookID uint) ([]models.Author, error) {
	authors := []models.Author{}
	err := r.db.WithContext(ctx).
		Joins("JOIN author_in_books ON author_in_books.author_id = authors.id").
		Where("author_in_books.book_id = ?", bookID).
		Order("authors.id").
		Find(&authors).Error
	return authors, err
}

func (r *authorInBookRepository) BooksOfAuthor(ctx context.Context, authorID uint) ([]models.Book, error) {
	books := []models.Book{}
	err := r.db.WithContext(ctx).
		Joins("JOIN author_in_books ON author_in_books.book_id = books.id").
		Where("author_in_books.author_id = ?", authorID).
		Order("books.id").
		Find(&books).Error
	return books, err
}
