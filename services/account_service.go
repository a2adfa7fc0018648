package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"bookstore/auth"
	"bookstore/email"
	"bookstore/models"
	"bookstore/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService covers the public account flows: registration, login,
// email confirmation and password reset.
type AccountService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.User, error)
	Login(ctx context.Context, input *LoginInput) (string, *models.User, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error
}

// RegisterInput is the body of POST /account/register.
type RegisterInput struct {
	UserName  string `json:"user_name" binding:"required,min=3,max=64"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginInput is the body of POST /account/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordInput is the body of POST /account/forgot-password.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

const (
	confirmationTTL         = 24 * time.Hour
	generatedPasswordLength = 12
)

type accountService struct {
	store  *repositories.Store
	tokens *auth.TokenManager
	mailer email.Sender
	// baseURL prefixes the confirmation link sent after registration.
	baseURL string
	logger  *zap.Logger
}

var _ AccountService = (*accountService)(nil)

// NewAccountService creates an AccountService. baseURL prefixes the links put in emails.
func NewAccountService(store *repositories.Store, tokens *auth.TokenManager, mailer email.Sender, baseURL string, logger *zap.Logger) AccountService {
	return &accountService{store: store, tokens: tokens, mailer: mailer, baseURL: baseURL, logger: logger.Named("account")}
}

func (s *accountService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, input.UserName, input.Email); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &models.User{
		UserName:  input.UserName,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hashed),
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			// A concurrent registration can win the race after ensureUnique.
			return conflict(fmt.Errorf("failed to create user: %w", err), "user")
		}
		role, err := tx.Roles.FindByName(ctx, models.RoleClient)
		if err != nil {
			return fmt.Errorf("find client role: %w", err)
		}
		return tx.Users.AssignRole(ctx, user, role)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendConfirmation(ctx, user); err != nil {
		// The account exists either way; the user can ask for a new password later.
		s.logger.Warn("Could not send confirmation email", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	s.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("user_name", user.UserName))
	return user, nil
}

func (s *accountService) ensureUnique(ctx context.Context, userName, mail string) error {
	taken, err := s.store.Users.UserNameTaken(ctx, userName, 0)
	if err != nil {
		return fmt.Errorf("database error checking existing user: %w", err)
	}
	if taken {
		return fmt.Errorf("username %w", ErrConflict)
	}

	taken, err = s.store.Users.EmailTaken(ctx, mail, 0)
	if err != nil {
		return fmt.Errorf("database error checking existing user: %w", err)
	}
	if taken {
		return fmt.Errorf("email %w", ErrConflict)
	}
	return nil
}

func (s *accountService) sendConfirmation(ctx context.Context, user *models.User) error {
	code, err := s.tokens.GenerateEmailConfirmationCode(user.Email, confirmationTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/account/confirm-email?email=%s&code=%s",
		s.baseURL, url.QueryEscape(user.Email), url.QueryEscape(code))
	return s.mailer.Send(ctx, email.Message{
		To:      user.Email,
		Subject: "Confirm your bookstore account",
		Body:    fmt.Sprintf("Hello %s,\n\nPlease confirm your account by opening this link:\n%s\n", user.UserName, link),
	})
}

func (s *accountService) Login(ctx context.Context, input *LoginInput) (string, *models.User, error) {
	if err := Validate(input); err != nil {
		return "", nil, err
	}

	user, err := s.store.Users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("database error retrieving user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("could not generate token: %w", err)
	}
	return token, user, nil
}

func (s *accountService) ConfirmEmail(ctx context.Context, mail, code string) error {
	if mail == "" || code == "" {
		return &ValidationError{Fields: map[string]string{"email": "is required", "code": "is required"}}
	}
	if err := s.tokens.VerifyEmailConfirmationCode(mail, code); err != nil {
		return fieldError("code", err.Error())
	}

	user, err := s.store.Users.FindByEmail(ctx, mail)
	if err != nil {
		return notFound(err, "user")
	}
	if user.EmailConfirmed {
		return nil
	}
	user.EmailConfirmed = true
	if err := s.store.Users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// ForgotPassword replaces the password of the account with a generated one
// and mails it. Unknown addresses succeed silently.
func (s *accountService) ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error {
	if err := Validate(input); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.FindByEmail(ctx, input.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		} else if err != nil {
			return fmt.Errorf("database error retrieving user: %w", err)
		}

		password, err := generatePassword(generatedPasswordLength)
		if err != nil {
			return err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("could not hash password: %w", err)
		}
		user.Password = string(hashed)
		if err := tx.Users.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to save new password: %w", err)
		}

		return s.mailer.Send(ctx, email.Message{
			To:      user.Email,
			Subject: "Your new bookstore password",
			Body:    fmt.Sprintf("Hello %s,\n\nYour new password is: %s\nPlease change it after signing in.\n", user.UserName, password),
		})
	})
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generatePassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
