package repo

import (
	"context"
	"encoding/json"

	"newshound/internal/modkit/repokit"
	perr "newshound/internal/platform/errors"
	"newshound/internal/services/enrich/domain"
)

const insertRunSQL = `
INSERT INTO enrichment_runs (
	run_id, incident_id, dataset, status,
	escalation_reason, retry_count, final_strategy, agency_name,
	search_attempts, validation_results, extracted_fields, conflicting_fields,
	reasoning_summary, cost_usd, error_message, created_at
) VALUES (
	$1, $2, $3, $4,
	$5, $6, $7, $8,
	$9, $10, $11, $12,
	$13, $14, $15, $16
)`

// InsertRun implements Storage
func (s *pg) InsertRun(ctx context.Context, o domain.Outcome) error {
	attempts, err := jsonList(o.SearchAttempts)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal search attempts")
	}
	validations, err := jsonList(o.ValidationResults)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal validation results")
	}
	extracted, err := jsonList(o.ExtractedFields)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal extracted fields")
	}
	conflicts, err := jsonList(o.ConflictingFields)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal conflicting fields")
	}

	var reason *string
	if o.EscalationReason != nil {
		r := string(*o.EscalationReason)
		reason = &r
	}

	err = repokit.ExecOne(ctx, s.q, insertRunSQL,
		o.RunID.String(), o.IncidentID, string(o.Dataset), string(o.Status),
		reason, o.RetryCount, string(o.FinalStrategy), o.AgencyName,
		attempts, validations, extracted, conflicts,
		o.ReasoningSummary, o.CostUSD, o.ErrorMessage, o.CreatedAt,
	)
	return perr.FromPostgres(err, "insert enrichment run")
}

// jsonList marshals xs with nil normalized to an empty array so the jsonb
// columns never receive SQL null
func jsonList[T any](xs []T) ([]byte, error) {
	if xs == nil {
		xs = []T{}
	}
	return json.Marshal(xs)
}
