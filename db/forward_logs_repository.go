package db

import (
	"context"
	"fmt"
	"strings"
)

type ForwardLogFilters struct {
	ExternalID string
	Forwarded  *bool
	Limit      int
	Offset     int
}

func forwardLogWhere(filters ForwardLogFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.ExternalID != "" {
		args = append(args, filters.ExternalID)
		conditions = append(conditions, fmt.Sprintf("external_id = $%d", len(args)))
	}

	if filters.Forwarded != nil {
		args = append(args, *filters.Forwarded)
		conditions = append(conditions, fmt.Sprintf("forwarded = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *Store) ListForwardLogs(ctx context.Context, filters ForwardLogFilters) ([]ForwardLog, error) {
	where, args := forwardLogWhere(filters)
	query := `
		SELECT id, external_id, content, forwarded, matched_keyword, error, created_at
		FROM forward_logs` + where + " ORDER BY id DESC"
	query, args = paginate(query, args, filters.Limit, filters.Offset)

	logs := []ForwardLog{}
	if err := s.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query forward logs: %w", err)
	}
	return logs, nil
}

func (s *Store) CountForwardLogs(ctx context.Context, filters ForwardLogFilters) (int, error) {
	where, args := forwardLogWhere(filters)

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM forward_logs"+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count forward logs: %w", err)
	}
	return count, nil
}
