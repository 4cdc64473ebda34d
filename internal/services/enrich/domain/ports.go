package domain

import (
	"context"
	"time"

	"newshound/internal/core/enrichment"
)

// RunnerPort is the external surface of the enrich module
type RunnerPort interface {
	// RunIncident traverses the pipeline for one incident and returns the
	// terminal state. The error covers infrastructure around the traversal
	// (outcome persistence), never pipeline routing, which always ends in a
	// terminal stage
	RunIncident(ctx context.Context, incidentID string, dataset enrichment.DatasetType) (enrichment.State, error)

	// RunBatch pages a worklist through a bounded worker pool, one
	// independent traversal per incident
	RunBatch(ctx context.Context, in BatchInput) (BatchReport, error)
}

// IncidentReaderPort looks up the baseline row for one incident.
// Missing incidents surface as a NotFound coded error
type IncidentReaderPort interface {
	FetchIncident(ctx context.Context, incidentID string, dataset enrichment.DatasetType) (enrichment.IncidentRow, error)
}

// SearcherPort is the outbound web search. One call per search node
// invocation, maxResults bounds the batch
type SearcherPort interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// SearchResult is one raw provider hit before article conversion.
// PublishedDate is present only when the provider reports one
type SearchResult struct {
	URL           string
	Title         string
	Content       string
	Score         float64
	PublishedDate *time.Time
}

// ExtractorPort runs one structured LLM extraction over one article and
// returns the per-field map plus token usage for cost accounting
type ExtractorPort interface {
	ExtractFields(ctx context.Context, a enrichment.Article) (enrichment.Extractions, TokenUsage, error)
}

// OutcomeWriterPort persists terminal traversal outcomes
type OutcomeWriterPort interface {
	InsertRun(ctx context.Context, o Outcome) error
}

// AuditPort records per-hop stage events, batched per traversal.
// Best effort: audit failure never fails a run
type AuditPort interface {
	RecordHops(ctx context.Context, events []StageEvent) error
}

// Ports are the dependencies injected into the enrich module
type Ports struct {
	Incidents IncidentReaderPort // required
	Searcher  SearcherPort       // required
	Extractor ExtractorPort      // required
	Outcomes  OutcomeWriterPort  // required unless DryRun
	Audit     AuditPort          // optional
}
