package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewUser holds the values used when a phone number is seen for the first time.
type NewUser struct {
	Identifier   string
	AccessSecret string
	DisplayName  string
}

// UpsertUser returns the id of the user with the given identifier, creating it
// when absent. created is true only for the call that inserted the row; an
// existing user is left untouched.
func (s *Store) UpsertUser(ctx context.Context, user NewUser) (id string, created bool, err error) {
	id, err = s.userID(ctx, user.Identifier)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.AccessSecret), bcrypt.DefaultCost)
	if err != nil {
		return "", false, fmt.Errorf("failed to hash access secret: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, identifier, access_secret, display_name, active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (identifier) DO NOTHING
		RETURNING id
	`, uuid.New().String(), user.Identifier, string(hash), user.DisplayName, time.Now().UTC()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the insert race to a concurrent delivery.
		id, err = s.userID(ctx, user.Identifier)
		return id, false, err
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to create user: %w", err)
	}
	return id, true, nil
}

func (s *Store) userID(ctx context.Context, identifier string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, "SELECT id FROM users WHERE identifier = $1", identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return id, nil
}

func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, identifier, access_secret, display_name, active, created_at
		FROM users
		WHERE identifier = $1
	`, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
