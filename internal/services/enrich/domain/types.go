// Package domain holds the enrich module contracts: what a traversal
// consumes, what it produces, and the ports the service is wired with
package domain

import (
	"time"

	"github.com/google/uuid"

	"newshound/internal/core/enrichment"
)

// RunStatus is the terminal disposition of one traversal
type RunStatus string

// Terminal dispositions. Every run ends in exactly one of these
const (
	RunComplete RunStatus = "complete"
	RunEscalate RunStatus = "escalate"
)

// StatusOf maps a terminal stage to its run status
func StatusOf(s enrichment.Stage) RunStatus {
	if s == enrichment.StageComplete {
		return RunComplete
	}
	return RunEscalate
}

// Outcome is the persisted record of one finished traversal. The state
// object is the audit record, the outcome row is its queryable projection
type Outcome struct {
	RunID      uuid.UUID
	IncidentID string
	Dataset    enrichment.DatasetType
	Status     RunStatus

	EscalationReason *enrichment.EscalationReason
	RetryCount       int
	FinalStrategy    enrichment.Strategy

	// AgencyName is the primary agency from the incident lookup, carried
	// for reviewer context only
	AgencyName *string

	SearchAttempts    []enrichment.SearchAttempt
	ValidationResults []enrichment.ValidationResult
	ExtractedFields   []enrichment.FieldExtraction
	ConflictingFields []enrichment.Field

	ReasoningSummary string
	CostUSD          float64
	ErrorMessage     *string

	CreatedAt time.Time
}

// TokenUsage is what one LLM extraction call consumed
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add accumulates usage from another call
func (u *TokenUsage) Add(o TokenUsage) {
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
}

// StageEvent is one node-to-coordinator hop in a traversal, recorded for
// the columnar audit trail
type StageEvent struct {
	RunID            uuid.UUID
	IncidentID       string
	Dataset          enrichment.DatasetType
	Stage            enrichment.Stage
	NextStage        enrichment.Stage
	Strategy         enrichment.Strategy
	RetryCount       int
	EscalationReason *enrichment.EscalationReason
	ArticleCount     int
	Duration         time.Duration
	TS               time.Time
}

// BatchInput selects which incidents a batch run visits. Explicit IDs win,
// otherwise the inclusive FromID..ToID range is enumerated
type BatchInput struct {
	Dataset     enrichment.DatasetType
	IncidentIDs []string
	FromID      int64
	ToID        int64
}

// BatchReport summarizes a batch run
type BatchReport struct {
	Total     int
	Completed int
	Escalated int
	Failed    int
	CostUSD   float64
}
