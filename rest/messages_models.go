package rest

import "time"

type MessageDetail struct {
	ExternalID     string    `json:"external_id"`
	Content        string    `json:"content"`
	ExtractedPhone *string   `json:"extracted_phone"`
	ExtractedName  *string   `json:"extracted_name"`
	Processed      bool      `json:"processed"`
	CreatedAt      time.Time `json:"created_at"`
}

type ForwardLogDetail struct {
	ID             string    `json:"id"`
	ExternalID     string    `json:"external_id"`
	Content        string    `json:"content"`
	Forwarded      bool      `json:"forwarded"`
	MatchedKeyword *string   `json:"matched_keyword"`
	Error          *string   `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type PaginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type MessagesListResponse struct {
	Data       []MessageDetail `json:"data"`
	Pagination PaginationInfo  `json:"pagination"`
}

type ForwardLogsListResponse struct {
	Data       []ForwardLogDetail `json:"data"`
	Pagination PaginationInfo     `json:"pagination"`
}
