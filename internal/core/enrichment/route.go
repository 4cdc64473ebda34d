package enrichment

import "strings"

// AvgRelevanceThreshold is the minimum mean provider relevance for a search
// batch to proceed to validation instead of retrying broader
const AvgRelevanceThreshold = 0.5

// Error message markers stamped by the processing nodes. The coordinator
// gates on these, so nodes and coordinator must agree on the exact prefixes
const (
	ErrExtractFailed  = "Extract failed"
	ErrSearchFailed   = "Search failed"
	ErrValidateFailed = "Validation failed"
	ErrMergeFailed    = "Merge failed"
)

// PendingPlaceholder fills terminal bookkeeping fields whose real values are
// produced after the traversal, by the runner
const PendingPlaceholder = "pending"

// Decision is the coordinator's verdict on one state. It carries every field
// the coordinator owns so Apply can write them in one place
type Decision struct {
	NextStage           Stage
	RetryCount          int
	NextStrategy        Strategy
	EscalationReason    *EscalationReason
	RequiresHumanReview bool
	ClearArticles       bool
}

// Decide computes the coordinator verdict for the state's current stage. It
// never mutates the state; the same state always yields the same decision.
// Terminal and unknown stages pass through unchanged
func Decide(s *State) Decision {
	d := Decision{
		NextStage:           s.NextStage,
		RetryCount:          s.RetryCount,
		NextStrategy:        s.NextStrategy,
		EscalationReason:    s.EscalationReason,
		RequiresHumanReview: s.RequiresHumanReview,
	}
	switch s.CurrentStage {
	case StageExtract:
		return decideAfterExtract(s, d)
	case StageSearch:
		return decideAfterSearch(s, d)
	case StageValidate:
		return decideAfterValidate(s, d)
	case StageMerge:
		return decideAfterMerge(s, d)
	}
	return d
}

// Apply writes the decision onto the state. Only coordinator-owned fields
// change, processing-node output is never touched except the article buffer
// on a retry
func (d Decision) Apply(s *State) {
	s.NextStage = d.NextStage
	s.RetryCount = d.RetryCount
	s.NextStrategy = d.NextStrategy
	s.EscalationReason = d.EscalationReason
	s.RequiresHumanReview = d.RequiresHumanReview
	if d.ClearArticles {
		s.RetrievedArticles = []Article{}
	}
}

func decideAfterExtract(s *State, d Decision) Decision {
	if errHas(s, ErrExtractFailed) {
		return escalate(d, ReasonExtractionError)
	}
	if s.CivilianName == nil && s.OfficerName == nil && s.IncidentDate == nil {
		return escalate(d, ReasonInsufficientSources)
	}
	d.NextStage = StageSearch
	return d
}

func decideAfterSearch(s *State, d Decision) Decision {
	if s.RetryCount > s.MaxRetries {
		return escalate(d, ReasonMaxRetries)
	}
	if errHas(s, ErrSearchFailed) {
		return retryBroader(s, d)
	}
	if a := s.LastAttempt(); a != nil && a.AvgRelevanceScore != nil && *a.AvgRelevanceScore >= AvgRelevanceThreshold {
		d.NextStage = StageValidate
		return d
	}
	return retryBroader(s, d)
}

func decideAfterValidate(s *State, d Decision) Decision {
	if AnyPassed(s.ValidationResults) {
		d.NextStage = StageMerge
		return d
	}
	return escalate(d, ReasonValidationError)
}

func decideAfterMerge(s *State, d Decision) Decision {
	if errHas(s, ErrMergeFailed) {
		return escalate(d, ReasonMergeError)
	}
	if len(s.ConflictingFields) > 0 {
		return escalate(d, ReasonConflict)
	}
	if len(s.ExtractedFields) == 0 {
		return escalate(d, ReasonInsufficientSources)
	}
	d.NextStage = StageComplete
	return d
}

// retryBroader advances one rung down the strategy ladder. Off the end of
// the ladder escalates as exhausted retries. The article buffer clears so a
// broader batch never mixes with the failed one
func retryBroader(s *State, d Decision) Decision {
	next, ok := s.NextStrategy.Next()
	if !ok {
		return escalate(d, ReasonMaxRetries)
	}
	d.RetryCount = s.RetryCount + 1
	d.NextStrategy = next
	d.NextStage = StageSearch
	d.ClearArticles = true
	return d
}

func escalate(d Decision, reason EscalationReason) Decision {
	r := reason
	d.NextStage = StageEscalate
	d.EscalationReason = &r
	d.RequiresHumanReview = true
	return d
}

func errHas(s *State, marker string) bool {
	return s.ErrorMessage != nil && strings.Contains(*s.ErrorMessage, marker)
}

// MarkComplete stamps the successful terminal. Bookkeeping fields take the
// pending placeholder until the runner fills them
func MarkComplete(s *State) {
	s.CurrentStage = StageComplete
	s.RequiresHumanReview = false
	stampPending(s)
}

// MarkEscalated stamps the review terminal
func MarkEscalated(s *State) {
	s.CurrentStage = StageEscalate
	s.RequiresHumanReview = true
	stampPending(s)
}

func stampPending(s *State) {
	if s.OutputFilePath == nil {
		p := PendingPlaceholder
		s.OutputFilePath = &p
	}
	if s.ReasoningSummary == nil {
		p := PendingPlaceholder
		s.ReasoningSummary = &p
	}
}
