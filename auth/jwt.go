package auth

import (
	"errors"
	"fmt"
	"time"

	"bookstore/config"
	"bookstore/models"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrTokenExpired     = errors.New("token is either expired or not active yet")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid token issuer")
	ErrInvalidAudience  = errors.New("invalid token audience")
	ErrInvalidToken     = errors.New("invalid token")
)

const (
	subjectAccess       = "access"
	subjectConfirmEmail = "confirm-email"
)

// CustomClaims is the payload of an access token.
type CustomClaims struct {
	UserID   uint     `json:"user_id"`
	UserName string   `json:"user_name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token was issued to a member of one of roles.
func (c *CustomClaims) HasRole(roles ...string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// TokenManager issues and validates HS256 tokens according to JwtAuthOptions.
type TokenManager struct {
	opts config.JwtAuthOptions
	now  func() time.Time
}

// NewTokenManager creates a TokenManager from opts.
func NewTokenManager(opts config.JwtAuthOptions) *TokenManager {
	return &TokenManager{opts: opts, now: time.Now}
}

// GenerateToken creates a signed access token for user. Roles must be loaded.
func (m *TokenManager) GenerateToken(user *models.User) (string, error) {
	now := m.now()
	claims := &CustomClaims{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    user.RoleNames(),
		RegisteredClaims: m.registered(now, m.opts.Lifetime(), subjectAccess),
	}
	return m.sign(claims)
}

// ParseAndValidateToken verifies the signature and the checks enabled in the
// options and returns the token's claims.
func (m *TokenManager) ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type confirmationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateEmailConfirmationCode signs a code that proves ownership of email.
func (m *TokenManager) GenerateEmailConfirmationCode(email string, ttl time.Duration) (string, error) {
	claims := &confirmationClaims{
		Email:            email,
		RegisteredClaims: m.registered(m.now(), ttl, subjectConfirmEmail),
	}
	return m.sign(claims)
}

// VerifyEmailConfirmationCode checks that code was issued for email.
func (m *TokenManager) VerifyEmailConfirmationCode(email, code string) error {
	claims := &confirmationClaims{}
	if err := m.parse(code, claims); err != nil {
		return err
	}
	if claims.Subject != subjectConfirmEmail || claims.Email != email {
		return ErrInvalidToken
	}
	return nil
}

func (m *TokenManager) registered(now time.Time, ttl time.Duration, subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    m.opts.Issuer,
		Subject:   subject,
		Audience:  []string{m.opts.Audience},
	}
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.opts.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type validatable interface {
	jwt.Claims
	registeredClaims() *jwt.RegisteredClaims
}

func (c *CustomClaims) registeredClaims() *jwt.RegisteredClaims       { return &c.RegisteredClaims }
func (c *confirmationClaims) registeredClaims() *jwt.RegisteredClaims { return &c.RegisteredClaims }

// parse checks the signature with jwt and then applies the configured
// lifetime, issuer and audience checks itself so clock skew can be honoured.
func (m *TokenManager) parse(tokenString string, claims validatable) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.opts.SecretKey), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return ErrMalformedToken
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return ErrInvalidSignature
			}
		}
		return fmt.Errorf("couldn't handle this token: %w", err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	rc := claims.registeredClaims()
	now := m.now()
	skew := m.opts.ClockSkew()
	if m.opts.ValidateLifetime {
		if !rc.VerifyExpiresAt(now.Add(-skew), true) || !rc.VerifyNotBefore(now.Add(skew), false) {
			return ErrTokenExpired
		}
	}
	if m.opts.ValidateIssuer && !rc.VerifyIssuer(m.opts.Issuer, true) {
		return ErrInvalidIssuer
	}
	if m.opts.ValidateAudience && !rc.VerifyAudience(m.opts.Audience, true) {
		return ErrInvalidAudience
	}
	return nil
}
