package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbukum/apierr/logger"
)

// PoolError is returned when the pool itself fails: opening, acquiring a
// connection or pinging. Query failures are not wrapped.
type PoolError struct {
	Op  string
	Err error
}

func (e *PoolError) Error() string { return "database: pool " + e.Op + ": " + e.Err.Error() }

func (e *PoolError) Unwrap() error { return e.Err }

// Pool wraps a pgx connection pool.
type Pool struct {
	pool   *pgxpool.Pool
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

// Open creates a pool and pings it, retrying with linear backoff.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Pool, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = log.WithComponent("database")

	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, &PoolError{Op: "parse config", Err: err}
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnLifetime, _ = time.ParseDuration(cfg.MaxConnLifetime)
	pcfg.ConnConfig.ConnectTimeout, _ = time.ParseDuration(cfg.ConnectTimeout)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, &PoolError{Op: "open", Err: err}
	}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			log.Info("Database connection established",
				logger.Fields("attempt", attempt, "max_conns", cfg.MaxConns))
			return &Pool{pool: pool, log: log}, nil
		}
		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("Database ping failed, retrying",
				logger.Fields("attempt", attempt, logger.FieldError, err.Error(), "backoff", backoff.String()))
			if waitErr := contextSleep(ctx, backoff); waitErr != nil {
				pool.Close()
				return nil, &PoolError{Op: "open", Err: waitErr}
			}
		}
	}

	pool.Close()
	return nil, &PoolError{Op: "open", Err: fmt.Errorf("no connection after %d attempts: %w", cfg.MaxRetries, err)}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithConn acquires a connection, runs fn and releases the connection.
// Acquire failures are returned as *PoolError; fn's error is returned as-is.
func (p *Pool) WithConn(ctx context.Context, fn func(*pgxpool.Conn) error) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return &PoolError{Op: "acquire", Err: err}
	}
	defer conn.Release()
	return fn(conn)
}

// Ping verifies a connection can be acquired and used.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return &PoolError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes every connection. Safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.log.Info("Closing database pool")
	p.closed = true
	p.pool.Close()
}
