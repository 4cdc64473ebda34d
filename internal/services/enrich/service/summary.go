package service

import (
	"fmt"
	"strings"

	"newshound/internal/core/enrichment"
)

// RenderSummary builds the reviewer-facing digest of one terminal state.
// Deterministic: the same state always renders the same text. Stored on the
// outcome row; the state's own reasoning_summary keeps its terminal
// placeholder
func RenderSummary(st *enrichment.State) string {
	var b strings.Builder

	switch st.CurrentStage {
	case enrichment.StageComplete:
		b.WriteString("Complete.")
	case enrichment.StageEscalate:
		b.WriteString("Escalated")
		if st.EscalationReason != nil {
			fmt.Fprintf(&b, " (%s)", *st.EscalationReason)
		}
		b.WriteString(".")
	default:
		fmt.Fprintf(&b, "Stopped at %s.", st.CurrentStage)
	}

	if n := len(st.SearchAttempts); n == 0 {
		b.WriteString(" No searches attempted.")
	} else {
		strategies := make([]string, 0, n)
		for _, a := range st.SearchAttempts {
			strategies = append(strategies, string(a.Strategy))
		}
		fmt.Fprintf(&b, " Searched %d time(s): %s.", n, strings.Join(strategies, ", "))
		if a := st.LastAttempt(); a.AvgRelevanceScore != nil {
			fmt.Fprintf(&b, " Last mean relevance %.2f.", *a.AvgRelevanceScore)
		}
	}

	if n := len(st.ValidationResults); n > 0 {
		passed := 0
		for _, vr := range st.ValidationResults {
			if vr.Passed {
				passed++
			}
		}
		fmt.Fprintf(&b, " %d of %d article(s) passed validation.", passed, n)
	}

	if len(st.ExtractedFields) > 0 {
		parts := make([]string, 0, len(st.ExtractedFields))
		for _, x := range st.ExtractedFields {
			parts = append(parts, fmt.Sprintf("%s (%s)", x.FieldName, x.Confidence))
		}
		fmt.Fprintf(&b, " Admitted %s.", strings.Join(parts, ", "))
	}

	if len(st.ConflictingFields) > 0 {
		parts := make([]string, 0, len(st.ConflictingFields))
		for _, f := range st.ConflictingFields {
			parts = append(parts, string(f))
		}
		fmt.Fprintf(&b, " Conflicts: %s.", strings.Join(parts, ", "))
	}

	if st.ErrorMessage != nil {
		fmt.Fprintf(&b, " Last error: %s", *st.ErrorMessage)
	}

	return b.String()
}
