package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TelegramUpdate is the subset of a Bot API update the webhook reads.
type TelegramUpdate struct {
	Message *TelegramMessage `json:"message" validate:"required"`
}

type TelegramMessage struct {
	Text      string    `json:"text" validate:"required"`
	MessageID MessageID `json:"message_id" validate:"required,max=255"`
}

// MessageID accepts both the numeric ids Telegram sends and string ids.
type MessageID string

func (m *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("message_id must be a string or number: %w", err)
	}
	*m = MessageID(n.String())
	return nil
}

type WebhookResponse struct {
	Status    string  `json:"status"`
	Forwarded bool    `json:"forwarded"`
	Keyword   *string `json:"keyword"`
	Processed bool    `json:"processed"`
}

type DuplicateResponse struct {
	Status string `json:"status"`
}
