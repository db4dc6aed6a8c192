package models

import "time"

// TransactionLog is one audited HTTP request.
type TransactionLog struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	Method       string    `json:"http_method"`
	Endpoint     string    `json:"endpoint"`
	StatusCode   int       `json:"status_code"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsError reports whether the request ended with a client or server error.
func (l TransactionLog) IsError() bool {
	return l.StatusCode >= 400
}

// Error summary status values.
const (
	SummaryStatusSuccess = "success"
	SummaryStatusWarning = "warning"
)

// Error summary fixed texts.
const (
	ErrorSummaryNone    = "No errors detected in the last 24 hours. The system is operating smoothly."
	ErrorSummaryFailure = "Could not generate AI summary due to an issue with the AI service."
)

// ErrorSummary is the generated description of recent failures.
type ErrorSummary struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

// TransactionLogReport is the read view returned to a user.
type TransactionLogReport struct {
	Logs           []TransactionLog `json:"logs"`
	AIErrorSummary ErrorSummary     `json:"ai_error_summary"`
}
