package rest

import "time"

type ReportPeriod struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Aggregation string    `json:"aggregation"`
}

type ReportSummary struct {
	Received        int `json:"received"`
	Processed       int `json:"processed"`
	Attempts        int `json:"attempts"`
	Matched         int `json:"matched"`
	Forwarded       int `json:"forwarded"`
	ForwardFailures int `json:"forward_failures"`
}

type TimelineEntry struct {
	Date            string `json:"date"`
	Attempts        int    `json:"attempts"`
	Matched         int    `json:"matched"`
	Forwarded       int    `json:"forwarded"`
	ForwardFailures int    `json:"forward_failures"`
}

type ReportResponse struct {
	Period   ReportPeriod    `json:"period"`
	Summary  ReportSummary   `json:"summary"`
	Timeline []TimelineEntry `json:"timeline"`
}
