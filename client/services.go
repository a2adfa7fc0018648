package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"bookstore/services"
)

// BookService calls the /book routes.
type BookService struct{ c *Client }

func (s *BookService) List(ctx context.Context, search string, page, pageSize int) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, "/book", pageQuery(search, page, pageSize), nil)
}

func (s *BookService) Get(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, idPath("/book", id), nil, nil)
}

func (s *BookService) Create(ctx context.Context, input *services.BookInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPut, "/book", nil, input)
}

func (s *BookService) Update(ctx context.Context, id uint, input *services.UpdateBookInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPatch, idPath("/book", id), nil, input)
}

func (s *BookService) Delete(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodDelete, idPath("/book", id), nil, nil)
}

func (s *BookService) Authors(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, idPath("/book", id, "author"), nil, nil)
}

// AddAuthor links an author to a book.
func (s *BookService) AddAuthor(ctx context.Context, bookID, authorID uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPut, idPath("/book", bookID, "author", strconv.FormatUint(uint64(authorID), 10)), nil, nil)
}

func (s *BookService) RemoveAuthor(ctx context.Context, bookID, authorID uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodDelete, idPath("/book", bookID, "author", strconv.FormatUint(uint64(authorID), 10)), nil, nil)
}

// AuthorService calls the /author routes.
type AuthorService struct{ c *Client }

func (s *AuthorService) List(ctx context.Context, search string, page, pageSize int) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, "/author", pageQuery(search, page, pageSize), nil)
}

func (s *AuthorService) Get(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, idPath("/author", id), nil, nil)
}

func (s *AuthorService) Create(ctx context.Context, input *services.AuthorInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPut, "/author", nil, input)
}

func (s *AuthorService) Update(ctx context.Context, id uint, input *services.AuthorInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPatch, idPath("/author", id), nil, input)
}

func (s *AuthorService) Delete(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodDelete, idPath("/author", id), nil, nil)
}

func (s *AuthorService) Books(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, idPath("/author", id, "book"), nil, nil)
}

// UserService calls the /user routes. Every call needs a token.
type UserService struct{ c *Client }

func (s *UserService) List(ctx context.Context, page, pageSize int) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, "/user", pageQuery("", page, pageSize), nil)
}

func (s *UserService) Get(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, idPath("/user", id), nil, nil)
}

// Me fetches the user the token belongs to.
func (s *UserService) Me(ctx context.Context) (*http.Response, error) {
	return s.c.do(ctx, http.MethodGet, "/user/me", nil, nil)
}

func (s *UserService) Update(ctx context.Context, id uint, input *services.UpdateUserInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPatch, idPath("/user", id), nil, input)
}

func (s *UserService) Delete(ctx context.Context, id uint) (*http.Response, error) {
	return s.c.do(ctx, http.MethodDelete, idPath("/user", id), nil, nil)
}

func (s *UserService) ChangePassword(ctx context.Context, input *services.ChangePasswordInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPatch, "/user/password", nil, input)
}

// AccountService calls the public /account routes.
type AccountService struct{ c *Client }

func (s *AccountService) Register(ctx context.Context, input *services.RegisterInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPost, "/account/register", nil, input)
}

func (s *AccountService) Login(ctx context.Context, input *services.LoginInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPost, "/account/login", nil, input)
}

func (s *AccountService) ForgotPassword(ctx context.Context, input *services.ForgotPasswordInput) (*http.Response, error) {
	return s.c.do(ctx, http.MethodPost, "/account/forgot-password", nil, input)
}

func (s *AccountService) ConfirmEmail(ctx context.Context, email, code string) (*http.Response, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("code", code)
	return s.c.do(ctx, http.MethodGet, "/account/confirm-email", q, nil)
}
