package services

import (
	"context"
	"fmt"
	"strings"

	"bookstore/models"
	"bookstore/repositories"
)

// AuthorService manages authors and reports the books they wrote.
type AuthorService interface {
	ListAuthors(ctx context.Context, query string, page int, pageSize int) (*Page[models.Author], error)
	GetAuthor(ctx context.Context, id uint) (*models.Author, error)
	CreateAuthor(ctx context.Context, input *AuthorInput) (*models.Author, error)
	UpdateAuthor(ctx context.Context, id uint, input *AuthorInput) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id uint) error
	BooksOfAuthor(ctx context.Context, authorID uint) ([]models.Book, error)
}

// AuthorInput is used both to create and to update an author.
type AuthorInput struct {
	Name string `json:"name" binding:"required,max=255"`
}

type authorService struct {
	store *repositories.Store
}

var _ AuthorService = (*authorService)(nil)

// NewAuthorService creates an AuthorService over store.
func NewAuthorService(store *repositories.Store) AuthorService {
	return &authorService{store: store}
}

func (s *authorService) ListAuthors(ctx context.Context, query string, page int, pageSize int) (*Page[models.Author], error) {
	var (
		authors []models.Author
		total   int64
		err     error
	)
	if query = strings.TrimSpace(query); query != "" {
		authors, total, err = s.store.Authors.Search(ctx, query, page, pageSize)
	} else {
		authors, total, err = s.store.Authors.FindAll(ctx, page, pageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("database error retrieving authors: %w", err)
	}
	return newPage(authors, total, page, pageSize), nil
}

func (s *authorService) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	author, err := s.store.Authors.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "author")
	}
	return author, nil
}

func (s *authorService) CreateAuthor(ctx context.Context, input *AuthorInput) (*models.Author, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	author := &models.Author{Name: strings.TrimSpace(input.Name)}
	if err := s.store.Authors.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return author, nil
}

func (s *authorService) UpdateAuthor(ctx context.Context, id uint, input *AuthorInput) (*models.Author, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	author, err := s.store.Authors.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "author")
	}
	author.Name = strings.TrimSpace(input.Name)
	if err := s.store.Authors.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to save author updates: %w", err)
	}
	return author, nil
}

// DeleteAuthor removes the author together with its book links.
func (s *authorService) DeleteAuthor(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.AuthorInBooks.DeleteByAuthor(ctx, id); err != nil {
			return fmt.Errorf("failed to unlink books: %w", err)
		}
		if err := tx.Authors.Delete(ctx, id); err != nil {
			return notFound(err, "author")
		}
		return nil
	})
}

func (s *authorService) BooksOfAuthor(ctx context.Context, authorID uint) ([]models.Book, error) {
	if _, err := s.store.Authors.FindByID(ctx, authorID); err != nil {
		return nil, notFound(err, "author")
	}
	books, err := s.store.AuthorInBooks.BooksOfAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("database error retrieving books: %w", err)
	}
	return books, nil
}
