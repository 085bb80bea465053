package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbukum/apierr/database"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("account: user not found")

// Schema creates the users table. Uniqueness of username and email is
// enforced by the database.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            uuid PRIMARY KEY,
	username      text NOT NULL UNIQUE,
	email         text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now()
)`

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store persists users. Implementations return driver and pool errors
// unchanged so the API layer can translate them.
type Store interface {
	Insert(ctx context.Context, u User) error
	ByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context, offset int64, limit int) ([]User, error)
}

// PGStore is a Store backed by PostgreSQL.
type PGStore struct {
	pool *database.Pool
}

// NewPGStore creates a PGStore on pool.
func NewPGStore(pool *database.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Migrate applies Schema.
func (s *PGStore) Migrate(ctx context.Context) error {
	return s.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, Schema)
		return err
	})
}

func (s *PGStore) Insert(ctx context.Context, u User) error {
	return s.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
		return err
	})
}

func (s *PGStore) ByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
			username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *PGStore) List(ctx context.Context, offset int64, limit int) ([]User, error) {
	var users []User
	err := s.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT id, username, email, password_hash, created_at FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`,
			offset, limit)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
			var u User
			err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
			return u, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("account: list users: %w", err)
	}
	return users, nil
}
