package db

import (
	"context"
	"fmt"
	"time"
)

type ReportSummary struct {
	Received        int `db:"received"`
	Processed       int `db:"processed"`
	Attempts        int `db:"attempts"`
	Matched         int `db:"matched"`
	Forwarded       int `db:"forwarded"`
	ForwardFailures int `db:"forward_failures"`
}

type TimelineEntry struct {
	Date            string `db:"date"`
	Attempts        int    `db:"attempts"`
	Matched         int    `db:"matched"`
	Forwarded       int    `db:"forwarded"`
	ForwardFailures int    `db:"forward_failures"`
}

func (s *Store) GetReportSummary(ctx context.Context, startDate, endDate time.Time) (*ReportSummary, error) {
	summary := &ReportSummary{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS received,
			COALESCE(SUM(CASE WHEN processed THEN 1 ELSE 0 END), 0) AS processed
		FROM processed_messages
		WHERE created_at >= $1 AND created_at <= $2
	`, startDate, endDate).Scan(&summary.Received, &summary.Processed)
	if err != nil {
		return nil, fmt.Errorf("failed to get message summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN matched_keyword IS NOT NULL THEN 1 ELSE 0 END), 0) AS matched,
			COALESCE(SUM(CASE WHEN forwarded THEN 1 ELSE 0 END), 0) AS forwarded,
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0) AS forward_failures
		FROM forward_logs
		WHERE created_at >= $1 AND created_at <= $2
	`, startDate, endDate).Scan(&summary.Attempts, &summary.Matched, &summary.Forwarded, &summary.ForwardFailures)
	if err != nil {
		return nil, fmt.Errorf("failed to get forward summary: %w", err)
	}

	return summary, nil
}

func (s *Store) GetTimelineStats(ctx context.Context, startDate, endDate time.Time, aggregation string) ([]TimelineEntry, error) {
	var bucket string

	if s.sqlite {
		var dateFormat string
		switch aggregation {
		case "weekly":
			dateFormat = "%Y-%W"
		case "monthly":
			dateFormat = "%Y-%m"
		default:
			dateFormat = "%Y-%m-%d"
		}
		bucket = fmt.Sprintf("strftime('%s', substr(created_at, 1, 19))", dateFormat)
	} else {
		var dateFormat string
		var dateTrunc string

		switch aggregation {
		case "weekly":
			dateFormat = "IYYY-IW"
			dateTrunc = "week"
		case "monthly":
			dateFormat = "YYYY-MM"
			dateTrunc = "month"
		default:
			dateFormat = "YYYY-MM-DD"
			dateTrunc = "day"
		}
		bucket = fmt.Sprintf("TO_CHAR(DATE_TRUNC('%s', created_at), '%s')", dateTrunc, dateFormat)
	}

	query := fmt.Sprintf(`
		SELECT
			%s AS date,
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN matched_keyword IS NOT NULL THEN 1 ELSE 0 END), 0) AS matched,
			COALESCE(SUM(CASE WHEN forwarded THEN 1 ELSE 0 END), 0) AS forwarded,
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0) AS forward_failures
		FROM forward_logs
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY 1
		ORDER BY 1
	`, bucket)

	timeline := []TimelineEntry{}
	if err := s.db.SelectContext(ctx, &timeline, query, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	return timeline, nil
}
