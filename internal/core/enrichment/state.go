// Package enrichment holds the state machine that enriches one incident
// record from news coverage. Everything in this package is pure: nodes that
// touch the outside world (database, web search, LLM) live in
// services/enrich and call back into the deciders here.
//
// One incident = one State value threaded through extract, search, validate
// and merge, with the coordinator gating every hop. Processing stages set
// CurrentStage; only the coordinator writes NextStage.
package enrichment

import "time"

// DatasetType selects which incident polarity a record belongs to
type DatasetType string

// The two dataset polarities. They differ in who the victim is and how
// severity is stored, see BaselineFromRow
const (
	DatasetCiviliansShot DatasetType = "civilians_shot"
	DatasetOfficersShot  DatasetType = "officers_shot"
)

// Valid reports whether d is a known dataset
func (d DatasetType) Valid() bool {
	return d == DatasetCiviliansShot || d == DatasetOfficersShot
}

// Stage identifies a node in the pipeline graph
type Stage string

// Pipeline stages. Extract through merge are processing stages, complete and
// escalate are terminals
const (
	StageExtract  Stage = "extract"
	StageSearch   Stage = "search"
	StageValidate Stage = "validate"
	StageMerge    Stage = "merge"
	StageComplete Stage = "complete"
	StageEscalate Stage = "escalate"
)

// Routable reports whether the router may dispatch on s. Anything else falls
// back to escalate
func (s Stage) Routable() bool {
	switch s {
	case StageSearch, StageValidate, StageMerge, StageComplete, StageEscalate:
		return true
	}
	return false
}

// Strategy is one rung of the progressive search ladder
type Strategy string

// Search strategies, narrowest first. The coordinator walks this ladder on
// retry; the order is total
const (
	StrategyExactMatch       Strategy = "exact_match"
	StrategyTemporalExpanded Strategy = "temporal_expanded"
	StrategyEntityDropped    Strategy = "entity_dropped"
)

// StrategyOrder is the escalation ladder from narrowest to broadest query
var StrategyOrder = []Strategy{
	StrategyExactMatch,
	StrategyTemporalExpanded,
	StrategyEntityDropped,
}

// Next returns the successor strategy on the ladder, or ok=false when s is
// the last rung (or unknown)
func (s Strategy) Next() (Strategy, bool) {
	for i, v := range StrategyOrder {
		if v == s && i+1 < len(StrategyOrder) {
			return StrategyOrder[i+1], true
		}
	}
	return "", false
}

// Confidence grades an admitted field extraction
type Confidence string

// Confidence levels. Pending marks an extraction fresh off the LLM before
// reconciliation; admitted fields are always high or medium
const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceNone    Confidence = "none"
	ConfidencePending Confidence = "pending"
)

// EscalationReason explains why a record was routed to human review
type EscalationReason string

// Escalation reasons. Composite, low_confidence, overwrite and soft_anchor
// are reserved for future policy and never raised by the coordinator
const (
	ReasonExtractionError     EscalationReason = "extraction_error"
	ReasonValidationError     EscalationReason = "validation_error"
	ReasonMergeError          EscalationReason = "merge_error"
	ReasonConflict            EscalationReason = "conflict"
	ReasonComposite           EscalationReason = "composite"
	ReasonLowConfidence       EscalationReason = "low_confidence"
	ReasonOverwrite           EscalationReason = "overwrite"
	ReasonSoftAnchor          EscalationReason = "soft_anchor"
	ReasonMaxRetries          EscalationReason = "max_retries"
	ReasonInsufficientSources EscalationReason = "insufficient_sources"
)

// Field names one of the nine attributes extracted from media coverage
type Field string

// Media feature fields. The wire strings double as LLM schema keys
const (
	FieldOfficerName    Field = "officer_name"
	FieldCivilianName   Field = "civilian_name"
	FieldCivilianAge    Field = "civilian_age"
	FieldCivilianRace   Field = "civilian_race"
	FieldWeapon         Field = "weapon"
	FieldLocationDetail Field = "location_detail"
	FieldTimeOfDay      Field = "time_of_day"
	FieldOutcome        Field = "outcome"
	FieldCircumstance   Field = "circumstance"
)

// Fields returns all media feature fields in canonical order
func Fields() []Field {
	return []Field{
		FieldOfficerName,
		FieldCivilianName,
		FieldCivilianAge,
		FieldCivilianRace,
		FieldWeapon,
		FieldLocationDetail,
		FieldTimeOfDay,
		FieldOutcome,
		FieldCircumstance,
	}
}

// Valid reports whether f is a known media feature field
func (f Field) Valid() bool {
	for _, v := range Fields() {
		if v == f {
			return true
		}
	}
	return false
}

// Severity values derived from the incident row
const (
	SeverityFatal    = "fatal"
	SeverityNonFatal = "non-fatal"
	SeverityUnknown  = "unknown"
)

// Article is one web search result under consideration
type Article struct {
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	Content        *string    `json:"content,omitempty"`
	SourceName     *string    `json:"source_name,omitempty"`
	PublishedDate  *time.Time `json:"published_date,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
}

// SearchAttempt records one outbound search call, failed or not. Appended
// once per search invocation and never mutated
type SearchAttempt struct {
	Query             string    `json:"query"`
	Strategy          Strategy  `json:"strategy"`
	NumResults        int       `json:"num_results"`
	AvgRelevanceScore *float64  `json:"avg_relevance_score,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// ValidationResult scores one article against the incident anchors
type ValidationResult struct {
	Article       Article `json:"article"`
	DateMatch     bool    `json:"date_match"`
	LocationMatch bool    `json:"location_match"`
	// VictimNameMatch is tri-state: nil means the baseline has no civilian
	// name to compare against, which never blocks a pass
	VictimNameMatch *bool `json:"victim_name_match,omitempty"`
	Passed          bool  `json:"passed"`
}

// FieldExtraction is one media-derived value with provenance
type FieldExtraction struct {
	FieldName        Field      `json:"field_name"`
	Value            *string    `json:"value"`
	Confidence       Confidence `json:"confidence"`
	Sources          []string   `json:"sources"`
	SourceQuotes     []string   `json:"source_quotes"`
	ExtractionMethod string     `json:"extraction_method"`
	LLMReasoning     *string    `json:"llm_reasoning,omitempty"`
}

// DefaultMaxRetries bounds the search ladder walk per traversal
const DefaultMaxRetries = 3

// State is the single value threaded through one incident traversal. It is
// never shared between incidents
type State struct {
	IncidentID string      `json:"incident_id"`
	Dataset    DatasetType `json:"dataset_type"`

	// Baseline fields from extract, authoritative for spelling
	OfficerName  *string    `json:"officer_name,omitempty"`
	CivilianName *string    `json:"civilian_name,omitempty"`
	IncidentDate *time.Time `json:"incident_date,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Severity     string     `json:"severity,omitempty"`

	SearchAttempts    []SearchAttempt `json:"search_attempts"`
	RetrievedArticles []Article       `json:"retrieved_articles"`

	ValidationResults []ValidationResult `json:"validation_results"`

	ExtractedFields []FieldExtraction `json:"extracted_fields"`
	// ConflictingFields is nil after a merge-level failure and a (possibly
	// empty) list otherwise; the distinction matters to the coordinator
	ConflictingFields []Field `json:"conflicting_fields,omitempty"`

	RetryCount   int      `json:"retry_count"`
	MaxRetries   int      `json:"max_retries"`
	NextStrategy Strategy `json:"next_strategy"`
	CurrentStage Stage    `json:"current_stage"`
	NextStage    Stage    `json:"next_stage"`

	EscalationReason    *EscalationReason `json:"escalation_reason,omitempty"`
	RequiresHumanReview bool              `json:"requires_human_review"`

	OutputFilePath   *string `json:"output_file_path,omitempty"`
	ReasoningSummary *string `json:"reasoning_summary,omitempty"`
	CostUSD          float64 `json:"cost_usd"`
	ErrorMessage     *string `json:"error_message,omitempty"`
}

// NewState seeds a traversal for one incident with the documented defaults
func NewState(incidentID string, dataset DatasetType) State {
	return State{
		IncidentID:   incidentID,
		Dataset:      dataset,
		Severity:     SeverityUnknown,
		MaxRetries:   DefaultMaxRetries,
		NextStrategy: StrategyExactMatch,
		CurrentStage: StageExtract,
		NextStage:    StageExtract,
	}
}

// BaselineValue returns the stored reference value for fields that exist as
// baseline columns. Only officer_name and civilian_name cross-check against
// the database; every other field returns ok=false and skips the check
func (s *State) BaselineValue(f Field) (*string, bool) {
	switch f {
	case FieldOfficerName:
		return s.OfficerName, true
	case FieldCivilianName:
		return s.CivilianName, true
	}
	return nil, false
}

// LastAttempt returns the most recent search attempt, or nil before the
// first search
func (s *State) LastAttempt() *SearchAttempt {
	if len(s.SearchAttempts) == 0 {
		return nil
	}
	return &s.SearchAttempts[len(s.SearchAttempts)-1]
}

// Terminal reports whether the state has reached an absorbing stage
func (s *State) Terminal() bool {
	return s.CurrentStage == StageComplete || s.CurrentStage == StageEscalate
}
