// Package service contains review-queue workflows over enrichment_runs
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"newshound/internal/modkit/repokit"
	perr "newshound/internal/platform/errors"
	pnet "newshound/internal/platform/net"
	"newshound/internal/services/api/review/domain"
	"newshound/internal/services/api/review/repo"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Service defines the service contract for review
type Service interface{ domain.ServicePort }

// Svc is the concrete service. The repo is bound to the pool up front,
// per-call rebinding only happens inside transactions
type Svc struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
	now    func() time.Time
}

// New wires the service. Both seams are required, a half-wired service
// would only fail later and further from the cause
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Svc {
	if db == nil {
		panic("review.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("review.Service requires a non nil Storage binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, now: time.Now}
}

// cursor pins the keyset position after the last row of a page
type cursor struct {
	CreatedAt time.Time `json:"created_at"`
	RunID     string    `json:"run_id"`
}

func encodeCursor(c cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (cursor, error) {
	var c cursor
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, perr.InvalidArgf("bad cursor")
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, perr.InvalidArgf("bad cursor")
	}
	return c, nil
}

// List returns one queue page plus the cursor for the next one
func (s *Svc) List(ctx context.Context, in domain.ListInput) (domain.ListOutput, error) {
	limit := in.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	f := repo.ListFilter{
		Status:      in.Status,
		Dataset:     in.Dataset,
		Reason:      in.Reason,
		PendingOnly: in.PendingOnly,
		Limit:       limit + 1, // one extra row decides whether a next page exists
	}
	if in.Cursor != "" {
		c, err := decodeCursor(in.Cursor)
		if err != nil {
			return domain.ListOutput{}, err
		}
		f.CursorAt = &c.CreatedAt
		f.CursorID = &c.RunID
	}

	rows, err := s.Repo.List(ctx, f)
	if err != nil {
		return domain.ListOutput{}, err
	}

	out := domain.ListOutput{Items: make([]domain.RunSummary, 0, min(len(rows), limit))}
	for i, r := range rows {
		if i == limit {
			last := rows[limit-1]
			out.NextCursor = encodeCursor(cursor{CreatedAt: last.CreatedAt, RunID: last.RunID})
			break
		}
		out.Items = append(out.Items, toSummary(r))
	}
	return out, nil
}

// Get returns the full persisted outcome for one run
func (s *Svc) Get(ctx context.Context, runID string) (domain.RunDetail, error) {
	if runID == "" {
		return domain.RunDetail{}, perr.InvalidArgf("run id required")
	}
	r, err := s.Repo.Get(ctx, runID)
	if err != nil {
		return domain.RunDetail{}, err
	}

	d := domain.RunDetail{
		RunSummary:        toSummary(r.RunRow),
		SearchAttempts:    json.RawMessage(r.SearchAttempts),
		ValidationResults: json.RawMessage(r.ValidationResults),
		ExtractedFields:   json.RawMessage(r.ExtractedFields),
		ConflictingFields: json.RawMessage(r.ConflictingFields),
		ErrorMessage:      r.ErrorMessage,
		ReviewedBy:        r.ReviewedBy,
		ReviewNote:        r.ReviewNote,
	}
	if r.ReviewedAt != nil {
		at := r.ReviewedAt.UTC().Format(time.RFC3339)
		d.ReviewedAt = &at
	}
	return d, nil
}

// Stats buckets runs by status and escalation reason over the window
func (s *Svc) Stats(ctx context.Context, in domain.StatsInput) ([]domain.StatsRow, error) {
	from, to, err := windowOf(in.Range)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.Stats(ctx, from, to, in.Dataset)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StatsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StatsRow{Status: r.Status, Reason: r.Reason, Runs: r.Runs, CostUSD: r.CostUSD})
	}
	return out, nil
}

// Resolve stamps a run reviewed exactly once
func (s *Svc) Resolve(ctx context.Context, in domain.ResolveInput) (domain.ResolveOutput, error) {
	reviewer := pnet.UserID(ctx)
	if reviewer == "" {
		// bearer middleware stamps the id; direct callers get a generic name
		reviewer = "api"
	}

	at := s.now().UTC()
	ok, err := s.Repo.MarkReviewed(ctx, in.RunID, reviewer, in.Note, at)
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	if !ok {
		// distinguish a missing run from a second resolve
		if _, err := s.Repo.Get(ctx, in.RunID); err != nil {
			return domain.ResolveOutput{}, err
		}
		return domain.ResolveOutput{}, perr.Conflictf("run %s already reviewed", in.RunID)
	}
	return domain.ResolveOutput{
		RunID:      in.RunID,
		ReviewedAt: at.Format(time.RFC3339),
		ReviewedBy: reviewer,
	}, nil
}

func toSummary(r repo.RunRow) domain.RunSummary {
	return domain.RunSummary{
		RunID:            r.RunID,
		IncidentID:       r.IncidentID,
		Dataset:          r.Dataset,
		Status:           r.Status,
		EscalationReason: r.EscalationReason,
		RetryCount:       r.RetryCount,
		FinalStrategy:    r.FinalStrategy,
		AgencyName:       r.AgencyName,
		ReasoningSummary: r.ReasoningSummary,
		Conflicts:        r.Conflicts,
		CostUSD:          r.CostUSD,
		CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
		Reviewed:         r.Reviewed,
	}
}

// windowOf widens the inclusive day range to a half-open instant range
func windowOf(tr domain.TimeRange) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01-02", tr.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, perr.InvalidArgf("bad start date")
	}
	end, err := time.ParseInLocation("2006-01-02", tr.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, perr.InvalidArgf("bad end date")
	}
	to := end.AddDate(0, 0, 1)
	if !from.Before(to) {
		return time.Time{}, time.Time{}, perr.InvalidArgf("start after end")
	}
	return from, to, nil
}
