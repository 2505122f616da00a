package db

import (
	"time"

	"access-gateway-api/extract"
)

// Setting keys read by the webhook pipeline and written by the admin API.
const (
	SettingForwardKeywords  = "forward_keywords"
	SettingForwardingActive = "forwarding_active"
	SettingRelayBotToken    = "relay_bot_token"
	SettingRelayChatID      = "relay_chat_id"
)

type User struct {
	ID           string    `db:"id"`
	Identifier   string    `db:"identifier"`
	AccessSecret string    `db:"access_secret"`
	DisplayName  string    `db:"display_name"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

type Category struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type AccessGrant struct {
	UserID       string       `db:"user_id"`
	CategoryID   string       `db:"category_id"`
	CategoryName string       `db:"category_name"`
	Axis         extract.Axis `db:"axis"`
	CreatedAt    time.Time    `db:"created_at"`
}

// ProcessedMessage is the single record kept per upstream message id.
type ProcessedMessage struct {
	ExternalID     string    `db:"external_id"`
	Content        string    `db:"content"`
	ExtractedPhone *string   `db:"extracted_phone"`
	ExtractedName  *string   `db:"extracted_name"`
	Processed      bool      `db:"processed"`
	CreatedAt      time.Time `db:"created_at"`
}

// ForwardLog is appended once per processing attempt.
type ForwardLog struct {
	ID             string    `db:"id"`
	ExternalID     string    `db:"external_id"`
	Content        string    `db:"content"`
	Forwarded      bool      `db:"forwarded"`
	MatchedKeyword *string   `db:"matched_keyword"`
	Error          *string   `db:"error"`
	CreatedAt      time.Time `db:"created_at"`
}

type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
