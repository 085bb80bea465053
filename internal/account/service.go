// Package account implements registration, login and listing of users.
// Service methods return collaborator failures unchanged (driver, pool,
// hasher, token and cursor errors); the HTTP handlers translate them.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/cursor"
	apperrors "github.com/kbukum/apierr/errors"
)

// Page size bounds for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Claims are the access token claims.
type Claims struct {
	gojwt.RegisteredClaims
	Username string `json:"username"`
}

// SetDefaults fills the registered claims when a token is issued.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer, audience string) {
	c.IssuedAt = gojwt.NewNumericDate(now)
	c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	c.Issuer = issuer
	if audience != "" {
		c.Audience = gojwt.ClaimStrings{audience}
	}
}

// RegisterInput is the payload of Register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Page is one page of users.
type Page struct {
	Users       []User
	EndCursor   string
	HasNextPage bool
}

// Service coordinates the store, hasher and token service.
type Service struct {
	store    Store
	hasher   password.Hasher
	tokens   *jwt.Service[*Claims]
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a Service.
func NewService(store Store, hasher password.Hasher, tokens *jwt.Service[*Claims]) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Register validates in, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := s.validate.Struct(in); err != nil {
		return User{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login checks the credentials and issues an access token. Unknown users and
// wrong passwords are both reported as INVALID_CREDENTIALS.
func (s *Service) Login(ctx context.Context, username, pw string) (string, error) {
	u, err := s.store.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", apperrors.InvalidCredentials()
	}
	if err != nil {
		return "", err
	}
	ok, err := s.hasher.Compare(pw, u.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.InvalidCredentials()
	}
	return s.tokens.GenerateAccess(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: u.ID.String()},
		Username:         u.Username,
	})
}

// Authenticate validates an access token.
func (s *Service) Authenticate(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}

// List returns up to first users after the cursor. An empty cursor starts
// at the beginning.
func (s *Service) List(ctx context.Context, after string, first int) (Page, error) {
	if first <= 0 {
		first = DefaultPageSize
	}
	first = min(first, MaxPageSize)

	var offset int64
	if after != "" {
		var err error
		if offset, err = cursor.Decode(after); err != nil {
			return Page{}, err
		}
	}

	users, err := s.store.List(ctx, offset, first+1)
	if err != nil {
		return Page{}, err
	}
	page := Page{HasNextPage: len(users) > first}
	if page.HasNextPage {
		users = users[:first]
	}
	page.Users = users
	if len(users) > 0 {
		page.EndCursor = cursor.Encode(offset + int64(len(users)))
	}
	return page, nil
}
