package rest

type SettingsResponse struct {
	Keywords         []string `json:"keywords"`
	KeywordsValid    bool     `json:"keywords_valid"`
	ForwardingActive bool     `json:"forwarding_active"`
	RelayBotToken    string   `json:"relay_bot_token"`
	RelayChatID      string   `json:"relay_chat_id"`
}

// UpdateSettingsRequest changes only the fields that are present.
type UpdateSettingsRequest struct {
	Keywords         *[]string `json:"keywords" validate:"omitempty,max=50,dive,max=100"`
	ForwardingActive *bool     `json:"forwarding_active"`
	RelayBotToken    *string   `json:"relay_bot_token" validate:"omitempty,max=256"`
	RelayChatID      *string   `json:"relay_chat_id" validate:"omitempty,max=128"`
}
