// Package store is the user directory: it maps GitHub usernames to
// display names and wallet addresses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUserNotFound is returned when a username or wallet address lookup
// misses.
var ErrUserNotFound = errors.New("user not found")

// User is a row in the user directory. WalletAddress is empty until
// the user attaches one.
type User struct {
	Username      string
	Name          string
	WalletAddress string
}

// Store implements the user directory on SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the user directory at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS github_user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		token TEXT,
		wallet_address TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_github_user_username ON github_user(username);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateUserIfNotExists inserts a user row keyed by username. The
// insert only happens when the username is absent; calling it twice
// leaves exactly one row.
func (s *Store) CreateUserIfNotExists(ctx context.Context, username, name, token string) error {
	query := `
		INSERT INTO github_user (username, name, token)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (
			SELECT id FROM github_user WHERE username = ?
		)
	`

	if _, err := s.db.ExecContext(ctx, query, username, name, token, username); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// AttachAddress records the wallet address for an existing user.
func (s *Store) AttachAddress(ctx context.Context, username, address string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE github_user SET wallet_address = ? WHERE username = ?`,
		address, username,
	)
	if err != nil {
		return fmt.Errorf("failed to attach address: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetAddress resolves a username to its wallet address. A user with no
// attached address counts as a miss.
func (s *Store) GetAddress(ctx context.Context, username string) (string, error) {
	var address sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT wallet_address FROM github_user WHERE username = ?`,
		username,
	).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve address: %w", err)
	}
	if !address.Valid || address.String == "" {
		return "", ErrUserNotFound
	}
	return address.String, nil
}

// GetUser fetches a full user row by username.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	var u User
	var address sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT username, name, wallet_address FROM github_user WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.Name, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	u.WalletAddress = address.String
	return &u, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
