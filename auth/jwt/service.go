// Package jwt issues and validates HMAC-signed JSON Web Tokens.
//
// The service is parameterized by a claims type T, which must implement
// jwt.Claims (typically by embedding jwt.RegisteredClaims):
//
//	type Claims struct {
//	    gojwt.RegisteredClaims
//	    Username string `json:"username"`
//	}
//
//	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
//	token, err := svc.GenerateAccess(&Claims{Username: "esteban"})
//	claims, err := svc.Parse(token)
//
// Parse failures are *ParseError values that wrap the golang-jwt sentinel
// errors, so errors.Is(err, gojwt.ErrTokenMalformed) and friends keep working.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrUnexpectedClaims is wrapped when the parsed claims are not of type T.
var ErrUnexpectedClaims = errors.New("unexpected claims type")

// ParseError is returned by Service.Parse for any token that fails validation.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "jwt: parse token: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Service generates and parses tokens for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a JWT service. newEmpty returns a fresh T for parsing.
func NewService[T gojwt.Claims](cfg Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// Generate signs claims as-is.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess fills the registered time, issuer and audience claims
// (when T exposes SetDefaults) and signs an access token.
func (s *Service[T]) GenerateAccess(claims T) (string, error) {
	if setter, ok := any(claims).(interface {
		SetDefaults(now time.Time, ttl time.Duration, issuer, audience string)
	}); ok {
		setter.SetDefaults(s.now(), s.cfg.AccessTokenTTL, s.cfg.Issuer, s.cfg.Audience)
	}
	return s.Generate(claims)
}

// Parse verifies the signature and registered claims of tokenString.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return zero, &ParseError{Err: err}
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, &ParseError{Err: ErrUnexpectedClaims}
	}
	return parsed, nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience))
	}
	return opts
}
