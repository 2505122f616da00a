package rest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCategoryHandlers(t *testing.T) {
	env := setupTestEnv(t, "")

	tests := []struct {
		name           string
		payload        interface{}
		expectedStatus int
	}{
		{"Create category", map[string]string{"name": " Relax "}, fiber.StatusCreated},
		{"Duplicate category", map[string]string{"name": "Relax"}, fiber.StatusConflict},
		{"Second category", map[string]string{"name": "Focus"}, fiber.StatusCreated},
		{"Blank name", map[string]string{"name": "   "}, fiber.StatusBadRequest},
		{"Invalid JSON", "invalid json", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, env.app, "POST", "/categories", tt.payload, nil)
			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Response: %s", tt.expectedStatus, status, string(body))
			}
		})
	}

	status, body := doJSON(t, env.app, "GET", "/categories", nil, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	var response CategoriesListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(response.Data))
	}
	if response.Data[0].Name != "Focus" || response.Data[1].Name != "Relax" {
		t.Errorf("Expected categories sorted by name, got %+v", response.Data)
	}
}

func TestGetUserHandler(t *testing.T) {
	env := setupTestEnv(t, "")

	for _, name := range []string{"Relax", "Podcast"} {
		if status, body := doJSON(t, env.app, "POST", "/categories", map[string]string{"name": name}, nil); status != fiber.StatusCreated {
			t.Fatalf("Failed to create category %s: %s", name, body)
		}
	}

	text := budiText + "\nKategori Audio Cloud: Podcast"
	if status, body := doJSON(t, env.app, "POST", "/webhook/telegram", webhookPayload(text, "m1"), nil); status != fiber.StatusOK {
		t.Fatalf("Failed to process message: %s", body)
	}

	status, body := doJSON(t, env.app, "GET", "/users/6281234567890", nil, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", status, body)
	}
	if bytes.Contains(body, []byte("access_secret")) {
		t.Error("Access secret must not be exposed")
	}

	var user UserDetail
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if user.DisplayName != "Budi" {
		t.Errorf("Expected display name Budi, got %q", user.DisplayName)
	}
	if len(user.Grants) != 6 {
		t.Errorf("Expected every axis in grants, got %d", len(user.Grants))
	}
	if len(user.Grants["audio"]) != 1 || user.Grants["audio"][0].CategoryName != "Relax" {
		t.Errorf("Unexpected audio grants: %+v", user.Grants["audio"])
	}
	if len(user.Grants["audio_cloud"]) != 1 || user.Grants["audio_cloud"][0].CategoryName != "Podcast" {
		t.Errorf("Unexpected audio cloud grants: %+v", user.Grants["audio_cloud"])
	}
	if len(user.Grants["video"]) != 0 {
		t.Errorf("Expected no video grants, got %+v", user.Grants["video"])
	}

	status, _ = doJSON(t, env.app, "GET", "/users/unknown", nil, nil)
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", status)
	}
}
