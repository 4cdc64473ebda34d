// Package domain holds DTOs for review http and service contracts
package domain

import "encoding/json"

// TimeRange defines a start and end day for stats queries
// Dates are ISO8601 days, end day inclusive
type TimeRange struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02" example:"2025-08-01"`
	End   string `json:"end" validate:"required,datetime=2006-01-02" example:"2025-08-31"`
}

// ListInput filters the review queue. The cursor is opaque and comes from a
// previous ListOutput; first pages leave it empty
type ListInput struct {
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=complete escalate" example:"escalate"`
	Dataset     string `json:"dataset,omitempty" validate:"omitempty,oneof=civilians_shot officers_shot" example:"civilians_shot"`
	Reason      string `json:"reason,omitempty" validate:"omitempty,oneof=extraction_error validation_error merge_error conflict composite low_confidence overwrite soft_anchor max_retries insufficient_sources" example:"max_retries"`
	PendingOnly bool   `json:"pending_only,omitempty" example:"true"`
	Cursor      string `json:"cursor,omitempty" example:"eyJjcmVhdGVkX2F0IjoiMjAyNS0wOC0wMVQwMDowMDowMFoifQ"`
	Limit       int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}

// RunSummary is one review-queue row
type RunSummary struct {
	RunID            string  `json:"run_id" example:"4f6c1c1e-8a2b-4b62-9a53-0f6f3f4e2a11"`
	IncidentID       string  `json:"incident_id" example:"4523"`
	Dataset          string  `json:"dataset" example:"civilians_shot"`
	Status           string  `json:"status" example:"escalate"`
	EscalationReason *string `json:"escalation_reason,omitempty" example:"max_retries"`
	RetryCount       int     `json:"retry_count" example:"3"`
	FinalStrategy    string  `json:"final_strategy" example:"entity_dropped"`
	AgencyName       *string `json:"agency_name,omitempty" example:"Houston Police Department"`
	ReasoningSummary string  `json:"reasoning_summary"`
	Conflicts        int     `json:"conflicts" example:"0"`
	CostUSD          float64 `json:"cost_usd" example:"0.0134"`
	CreatedAt        string  `json:"created_at" example:"2025-08-01T13:00:00Z"`
	Reviewed         bool    `json:"reviewed" example:"false"`
}

// ListOutput is a page of the review queue. NextCursor is empty on the
// last page
type ListOutput struct {
	Items      []RunSummary `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// RunDetail is the full persisted outcome for one run. The jsonb payloads
// pass through untouched
type RunDetail struct {
	RunSummary

	SearchAttempts    json.RawMessage `json:"search_attempts"`
	ValidationResults json.RawMessage `json:"validation_results"`
	ExtractedFields   json.RawMessage `json:"extracted_fields"`
	ConflictingFields json.RawMessage `json:"conflicting_fields"`
	ErrorMessage      *string         `json:"error_message,omitempty"`

	ReviewedAt *string `json:"reviewed_at,omitempty" example:"2025-08-02T09:00:00Z"`
	ReviewedBy *string `json:"reviewed_by,omitempty" example:"dana"`
	ReviewNote *string `json:"review_note,omitempty" example:"confirmed officer name from agency press release"`
}

// StatsInput asks for run counts over a window
type StatsInput struct {
	Range   TimeRange `json:"range"`
	Dataset string    `json:"dataset,omitempty" validate:"omitempty,oneof=civilians_shot officers_shot" example:"civilians_shot"`
}

// StatsRow is one (status, reason) bucket
type StatsRow struct {
	Status  string  `json:"status" example:"escalate"`
	Reason  string  `json:"reason,omitempty" example:"max_retries"`
	Runs    int64   `json:"runs" example:"17"`
	CostUSD float64 `json:"cost_usd" example:"0.42"`
}

// ResolveInput marks an escalated run as reviewed
type ResolveInput struct {
	RunID string `json:"run_id" validate:"required,uuid" example:"4f6c1c1e-8a2b-4b62-9a53-0f6f3f4e2a11"`
	Note  string `json:"note,omitempty" validate:"omitempty,max=2000" example:"confirmed officer name from agency press release"`
}

// ResolveOutput echoes the recorded review stamp
type ResolveOutput struct {
	RunID      string `json:"run_id"`
	ReviewedAt string `json:"reviewed_at" example:"2025-08-02T09:00:00Z"`
	ReviewedBy string `json:"reviewed_by" example:"dana"`
}
