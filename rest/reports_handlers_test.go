package rest

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestGetReportsHandler(t *testing.T) {
	env := setupTestEnv(t, "")
	seedMessages(t, env)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:           "Missing start_date",
			queryParams:    "?end_date=2026-01-31T23:59:59Z",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Missing end_date",
			queryParams:    "?start_date=2026-01-01T00:00:00Z",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Invalid start_date format",
			queryParams:    "?start_date=invalid&end_date=2026-01-31T23:59:59Z",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "End before start",
			queryParams:    "?start_date=2026-02-01&end_date=2026-01-01",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Invalid aggregation",
			queryParams:    "?start_date=2026-01-01T00:00:00Z&end_date=2026-01-31T23:59:59Z&aggregation=invalid",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Valid request with simple date format",
			queryParams:    "?start_date=2020-01-01&end_date=2099-12-31&aggregation=monthly",
			expectedStatus: fiber.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response ReportResponse
				if err := json.Unmarshal(body, &response); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if response.Period.Aggregation != "monthly" {
					t.Errorf("Expected aggregation 'monthly', got '%s'", response.Period.Aggregation)
				}
				if response.Summary.Received != 3 {
					t.Errorf("Expected 3 received messages, got %d", response.Summary.Received)
				}
				if response.Summary.Processed != 2 {
					t.Errorf("Expected 2 processed messages, got %d", response.Summary.Processed)
				}
				if response.Summary.Matched != 2 {
					t.Errorf("Expected 2 matched attempts, got %d", response.Summary.Matched)
				}
				if len(response.Timeline) != 1 {
					t.Errorf("Expected one timeline bucket, got %d", len(response.Timeline))
				}
			},
		},
		{
			name:           "Default aggregation",
			queryParams:    "?start_date=2020-01-01&end_date=2099-12-31",
			expectedStatus: fiber.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response ReportResponse
				if err := json.Unmarshal(body, &response); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if response.Period.Aggregation != "daily" {
					t.Errorf("Expected aggregation 'daily', got '%s'", response.Period.Aggregation)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, env.app, "GET", "/reports"+tt.queryParams, nil, nil)
			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Response: %s", tt.expectedStatus, status, string(body))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, body)
			}
		})
	}
}

func TestParseFlexibleDate(t *testing.T) {
	start, err := parseFlexibleDate("2026-01-15", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if start.Hour() != 0 || start.Day() != 15 {
		t.Errorf("Unexpected start of day: %v", start)
	}

	end, err := parseFlexibleDate("2026-01-15", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("Unexpected end of day: %v", end)
	}

	if _, err := parseFlexibleDate("15/01/2026", false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
