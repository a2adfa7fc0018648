package server

import (
	"bookstore/auth"
	"bookstore/config"
	"bookstore/email"
	"bookstore/repositories"
	"bookstore/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the set of application services shared by the HTTP and gRPC
// front ends.
type Services struct {
	Store    *repositories.Store
	Tokens   *auth.TokenManager
	Accounts services.AccountService
	Users    services.UserService
	Books    services.BookService
	Authors  services.AuthorService
}

// NewServices wires repositories, tokens and services over db.
func NewServices(cfg *config.Config, db *gorm.DB, mailer email.Sender, logger *zap.Logger) *Services {
	store := repositories.NewStore(db)
	tokens := auth.NewTokenManager(cfg.Jwt)
	return &Services{
		Store:    store,
		Tokens:   tokens,
		Accounts: services.NewAccountService(store, tokens, mailer, cfg.PublicURL, logger),
		Users:    services.NewUserService(store.Users),
		Books:    services.NewBookService(store),
		Authors:  services.NewAuthorService(store),
	}
}
