package services

import (
	"context"
	"fmt"
	"strings"

	"bookstore/models"
	"bookstore/repositories"
)

// BookService manages books and their links to authors.
type BookService interface {
	ListBooks(ctx context.Context, query string, page int, pageSize int) (*Page[models.Book], error)
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	CreateBook(ctx context.Context, input *BookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, id uint) error

	AuthorsOfBook(ctx context.Context, bookID uint) ([]models.Author, error)
	LinkAuthor(ctx context.Context, bookID, authorID uint) error
	UnlinkAuthor(ctx context.Context, bookID, authorID uint) error
}

// BookInput is the body used to create a book. Currency defaults to USD and Category to book.
type BookInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=4000"`
	Price       float64 `json:"price" binding:"gte=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	Category    string  `json:"category" binding:"omitempty,oneof=book journal newspaper"`
}

// UpdateBookInput holds the book fields to change. Nil fields are left alone.
type UpdateBookInput struct {
	Title       *string  `json:"title" binding:"omitnil,min=1,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=4000"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	Category    *string  `json:"category" binding:"omitempty,oneof=book journal newspaper"`
}

type bookService struct {
	store *repositories.Store
}

var _ BookService = (*bookService)(nil)

// NewBookService creates a BookService over store.
func NewBookService(store *repositories.Store) BookService {
	return &bookService{store: store}
}

func (s *bookService) ListBooks(ctx context.Context, query string, page int, pageSize int) (*Page[models.Book], error) {
	var (
		books []models.Book
		total int64
		err   error
	)
	if query = strings.TrimSpace(query); query != "" {
		books, total, err = s.store.Books.Search(ctx, query, page, pageSize)
	} else {
		books, total, err = s.store.Books.FindAll(ctx, page, pageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("database error retrieving books: %w", err)
	}
	return newPage(books, total, page, pageSize), nil
}

func (s *bookService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "book")
	}
	return book, nil
}

func (s *bookService) CreateBook(ctx context.Context, input *BookInput) (*models.Book, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	book := &models.Book{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Currency:    defaultString(strings.ToUpper(input.Currency), "USD"),
		Category:    models.BookCategory(defaultString(input.Category, string(models.CategoryBook))),
	}
	if err := s.store.Books.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "book")
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Price != nil {
		book.Price = *input.Price
	}
	if input.Currency != nil {
		book.Currency = strings.ToUpper(*input.Currency)
	}
	if input.Category != nil {
		book.Category = models.BookCategory(*input.Category)
	}

	if err := s.store.Books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to save book updates: %w", err)
	}
	return book, nil
}

// DeleteBook removes the book together with its author links.
func (s *bookService) DeleteBook(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.AuthorInBooks.DeleteByBook(ctx, id); err != nil {
			return fmt.Errorf("failed to unlink authors: %w", err)
		}
		if err := tx.Books.Delete(ctx, id); err != nil {
			return notFound(err, "book")
		}
		return nil
	})
}

func (s *bookService) AuthorsOfBook(ctx context.Context, bookID uint) ([]models.Author, error) {
	if _, err := s.store.Books.FindByID(ctx, bookID); err != nil {
		return nil, notFound(err, "book")
	}
	authors, err := s.store.AuthorInBooks.AuthorsOfBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("database error retrieving authors: %w", err)
	}
	return authors, nil
}

// LinkAuthor records that authorID wrote bookID. Both must exist.
func (s *bookService) LinkAuthor(ctx context.Context, bookID, authorID uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Books.FindByID(ctx, bookID); err != nil {
			return notFound(err, "book")
		}
		if _, err := tx.Authors.FindByID(ctx, authorID); err != nil {
			return notFound(err, "author")
		}
		exists, err := tx.AuthorInBooks.Exists(ctx, authorID, bookID)
		if err != nil {
			return fmt.Errorf("database error checking link: %w", err)
		}
		if exists {
			return fmt.Errorf("author link %w", ErrConflict)
		}
		if err := tx.AuthorInBooks.Create(ctx, &models.AuthorInBook{AuthorID: authorID, BookID: bookID}); err != nil {
			return fmt.Errorf("failed to link author: %w", err)
		}
		return nil
	})
}

func (s *bookService) UnlinkAuthor(ctx context.Context, bookID, authorID uint) error {
	if err := s.store.AuthorInBooks.Unlink(ctx, authorID, bookID); err != nil {
		return notFound(err, "author link")
	}
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
