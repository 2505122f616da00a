package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type MessageFilters struct {
	Keyword   string
	Phone     string
	Processed *bool
	Limit     int
	Offset    int
}

// AlreadyProcessed reports whether a record exists for externalID.
func (s *Store) AlreadyProcessed(ctx context.Context, externalID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_messages WHERE external_id = $1",
		externalID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up message: %w", err)
	}
	return true, nil
}

// ClaimMessage inserts the unprocessed record for externalID. It returns false
// when another delivery already holds the id.
func (s *Store) ClaimMessage(ctx context.Context, externalID, content string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_messages (external_id, content, processed, created_at)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (external_id) DO NOTHING
	`, externalID, content, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to claim message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// ReleaseMessage drops a claimed record so the upstream retry is processed again.
func (s *Store) ReleaseMessage(ctx context.Context, externalID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM processed_messages WHERE external_id = $1",
		externalID,
	); err != nil {
		return fmt.Errorf("failed to release message: %w", err)
	}
	return nil
}

// CompleteMessage stores the extraction outcome on the claimed record and
// appends the forward log entry.
func (s *Store) CompleteMessage(ctx context.Context, message ProcessedMessage, entry ForwardLog) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		UPDATE processed_messages
		SET extracted_phone = $1, extracted_name = $2, processed = $3
		WHERE external_id = $4
	`, message.ExtractedPhone, message.ExtractedName, message.Processed, message.ExternalID); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO forward_logs (id, external_id, content, forwarded, matched_keyword, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ExternalID, entry.Content, entry.Forwarded, entry.MatchedKeyword, entry.Error, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert forward log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

func (s *Store) GetMessage(ctx context.Context, externalID string) (*ProcessedMessage, error) {
	var message ProcessedMessage
	err := s.db.GetContext(ctx, &message, `
		SELECT external_id, content, extracted_phone, extracted_name, processed, created_at
		FROM processed_messages
		WHERE external_id = $1
	`, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

func messageWhere(filters MessageFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.Keyword != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(filters.Keyword))+"%")
		conditions = append(conditions, fmt.Sprintf(`LOWER(content) LIKE $%d ESCAPE '\'`, len(args)))
	}

	if filters.Phone != "" {
		args = append(args, filters.Phone)
		conditions = append(conditions, fmt.Sprintf("extracted_phone = $%d", len(args)))
	}

	if filters.Processed != nil {
		args = append(args, *filters.Processed)
		conditions = append(conditions, fmt.Sprintf("processed = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *Store) ListMessages(ctx context.Context, filters MessageFilters) ([]ProcessedMessage, error) {
	where, args := messageWhere(filters)
	query := `
		SELECT external_id, content, extracted_phone, extracted_name, processed, created_at
		FROM processed_messages` + where + " ORDER BY created_at DESC, external_id"
	query, args = paginate(query, args, filters.Limit, filters.Offset)

	messages := []ProcessedMessage{}
	if err := s.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return messages, nil
}

func (s *Store) CountMessages(ctx context.Context, filters MessageFilters) (int, error) {
	where, args := messageWhere(filters)

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM processed_messages"+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit <= 0 {
		return query, args
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

// escapeLike escapes LIKE wildcards so user input only matches literally.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
