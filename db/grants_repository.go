package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"access-gateway-api/extract"
)

// ErrInvalidAxis is returned for an axis outside extract.Axes.
var ErrInvalidAxis = errors.New("invalid access axis")

// ErrCategoryExists is returned when a category name is already taken.
var ErrCategoryExists = errors.New("category already exists")

const grantSchema = `
CREATE TABLE IF NOT EXISTS access_grants (
    user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    category_id VARCHAR(36) NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    axis VARCHAR(20) NOT NULL CHECK (axis IN ('audio', 'document', 'video', 'audio_cloud', 'document_cloud', 'file_cloud')),
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, category_id, axis)
)`

// EnsureGrantSchema creates the access grant relation when it is missing.
func (s *Store) EnsureGrantSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, grantSchema); err != nil {
		return fmt.Errorf("failed to ensure access grant schema: %w", err)
	}
	return nil
}

// FindCategory resolves a free-text name to the first category whose name
// contains it, ignoring case. Ties are broken by creation order, then name.
func (s *Store) FindCategory(ctx context.Context, name string) (*Category, error) {
	var category Category
	err := s.db.GetContext(ctx, &category, `
		SELECT id, name, created_at
		FROM categories
		WHERE LOWER(name) LIKE $1 ESCAPE '\'
		ORDER BY created_at, name
		LIMIT 1
	`, "%"+escapeLike(strings.ToLower(name))+"%")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

// Grant records access to a category on an axis. It returns false, without
// error, when the grant already existed.
func (s *Store) Grant(ctx context.Context, userID, categoryID string, axis extract.Axis) (bool, error) {
	if !axis.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidAxis, axis)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO access_grants (user_id, category_id, axis, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category_id, axis) DO NOTHING
	`, userID, categoryID, string(axis), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert %s grant: %w", axis, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func (s *Store) ListUserGrants(ctx context.Context, userID string) ([]AccessGrant, error) {
	grants := []AccessGrant{}
	err := s.db.SelectContext(ctx, &grants, `
		SELECT g.user_id, g.category_id, c.name AS category_name, g.axis, g.created_at
		FROM access_grants g
		JOIN categories c ON c.id = g.category_id
		WHERE g.user_id = $1
		ORDER BY g.axis, c.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	return grants, nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*Category, error) {
	category := &Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, category.ID, category.Name, category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCategoryExists
	}
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	if err := s.db.SelectContext(ctx, &categories, "SELECT id, name, created_at FROM categories ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return categories, nil
}
