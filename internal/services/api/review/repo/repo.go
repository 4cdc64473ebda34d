// Package repo provides postgres access for the review queue over
// enrichment_runs
package repo

import (
	"context"
	"time"

	"newshound/internal/modkit/repokit"
	perr "newshound/internal/platform/errors"
)

// ListFilter narrows the queue. Empty strings mean no filter. CursorAt and
// CursorID page past the last row of the previous page and travel together
type ListFilter struct {
	Status      string
	Dataset     string
	Reason      string
	PendingOnly bool
	CursorAt    *time.Time
	CursorID    *string
	Limit       int
}

// RunRow is the queue projection of one enrichment_runs row
type RunRow struct {
	RunID            string
	IncidentID       string
	Dataset          string
	Status           string
	EscalationReason *string
	RetryCount       int
	FinalStrategy    string
	AgencyName       *string
	ReasoningSummary string
	Conflicts        int
	CostUSD          float64
	CreatedAt        time.Time
	Reviewed         bool
}

// DetailRow carries the full persisted outcome including jsonb payloads
type DetailRow struct {
	RunRow

	SearchAttempts    []byte
	ValidationResults []byte
	ExtractedFields   []byte
	ConflictingFields []byte
	ErrorMessage      *string
	ReviewedAt        *time.Time
	ReviewedBy        *string
	ReviewNote        *string
}

// StatRow is one (status, reason) bucket over a window
type StatRow struct {
	Status  string
	Reason  string
	Runs    int64
	CostUSD float64
}

// Storage is the persistence surface the review service needs
type Storage interface {
	List(ctx context.Context, f ListFilter) ([]RunRow, error)
	Get(ctx context.Context, runID string) (DetailRow, error)
	Stats(ctx context.Context, from, to time.Time, dataset string) ([]StatRow, error)

	// MarkReviewed stamps an unreviewed run, reporting whether a row changed
	MarkReviewed(ctx context.Context, runID, reviewer, note string, at time.Time) (bool, error)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG hands out the postgres binder. The binder is stateless, each Bind
// carries its own Queryer
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind pins the repo to q, pool or open transaction alike
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

const summaryCols = `
	run_id::text, incident_id, dataset, status,
	escalation_reason, retry_count, final_strategy, agency_name,
	reasoning_summary, coalesce(jsonb_array_length(conflicting_fields), 0),
	cost_usd, created_at, reviewed_at is not null`

// List implements Storage. Runs page newest first; the keyset predicate
// compares (created_at, run_id) as a row value so ties on created_at
// cannot skip or repeat rows
func (s *pg) List(ctx context.Context, f ListFilter) ([]RunRow, error) {
	sql := `
select` + summaryCols + `
from enrichment_runs
where ($1 = '' or status = $1)
and ($2 = '' or dataset = $2)
and ($3 = '' or escalation_reason = $3)
and (not $4 or reviewed_at is null)
and ($5::timestamptz is null or (created_at, run_id) < ($5::timestamptz, $6::uuid))
order by created_at desc, run_id desc
limit $7
`
	out, err := repokit.Many(ctx, s.q, scanSummary, sql,
		f.Status, f.Dataset, f.Reason, f.PendingOnly, f.CursorAt, f.CursorID, f.Limit,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list runs")
	}
	return out, nil
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, runID string) (DetailRow, error) {
	sql := `
select` + summaryCols + `,
	search_attempts, validation_results, extracted_fields, conflicting_fields,
	error_message, reviewed_at, reviewed_by, review_note
from enrichment_runs
where run_id = $1::uuid
`
	d, err := repokit.One(ctx, s.q, scanDetail, sql, runID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return d, perr.NotFoundf("run %s not found", runID)
		}
		return d, perr.FromPostgres(err, "get run")
	}
	return d, nil
}

// Stats implements Storage. The window is [from, to) in UTC
func (s *pg) Stats(ctx context.Context, from, to time.Time, dataset string) ([]StatRow, error) {
	const sql = `
select status, coalesce(escalation_reason, ''), count(*), coalesce(sum(cost_usd), 0)
from enrichment_runs
where created_at >= $1 and created_at < $2
and ($3 = '' or dataset = $3)
group by 1, 2
order by 1, 2
`
	out, err := repokit.Many(ctx, s.q, func(row repokit.Row) (StatRow, error) {
		var r StatRow
		return r, row.Scan(&r.Status, &r.Reason, &r.Runs, &r.CostUSD)
	}, sql, from, to, dataset)
	if err != nil {
		return nil, perr.FromPostgres(err, "run stats")
	}
	return out, nil
}

// MarkReviewed implements Storage. Reviewed runs stay reviewed: the update
// only touches rows with no stamp yet
func (s *pg) MarkReviewed(ctx context.Context, runID, reviewer, note string, at time.Time) (bool, error) {
	const sql = `
update enrichment_runs
set reviewed_at = $2, reviewed_by = $3, review_note = nullif($4, '')
where run_id = $1::uuid and reviewed_at is null
`
	tag, err := s.q.Exec(ctx, sql, runID, at, reviewer, note)
	if err != nil {
		return false, perr.FromPostgres(err, "mark reviewed")
	}
	return tag.RowsAffected() > 0, nil
}

func scanSummary(row repokit.Row) (RunRow, error) {
	var r RunRow
	return r, row.Scan(
		&r.RunID, &r.IncidentID, &r.Dataset, &r.Status,
		&r.EscalationReason, &r.RetryCount, &r.FinalStrategy, &r.AgencyName,
		&r.ReasoningSummary, &r.Conflicts,
		&r.CostUSD, &r.CreatedAt, &r.Reviewed,
	)
}

func scanDetail(row repokit.Row) (DetailRow, error) {
	var d DetailRow
	return d, row.Scan(
		&d.RunID, &d.IncidentID, &d.Dataset, &d.Status,
		&d.EscalationReason, &d.RetryCount, &d.FinalStrategy, &d.AgencyName,
		&d.ReasoningSummary, &d.Conflicts,
		&d.CostUSD, &d.CreatedAt, &d.Reviewed,
		&d.SearchAttempts, &d.ValidationResults, &d.ExtractedFields, &d.ConflictingFields,
		&d.ErrorMessage, &d.ReviewedAt, &d.ReviewedBy, &d.ReviewNote,
	)
}
