// Package service implements the enrich pipeline runner: the four I/O nodes
// around the pure core, the graph loop, and the batch worker pool
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"newshound/internal/core/enrichment"
	perr "newshound/internal/platform/errors"
	"newshound/internal/platform/logger"
	"newshound/internal/services/enrich/domain"
)

// Config tunes the runner. The module layer fills it from env plus flags
type Config struct {
	Workers          int
	MaxRetries       int
	SearchMaxResults int
	DryRun           bool

	// Cost rates. Zero rates price to zero, cost stays best effort
	CostInputMTokUSD  float64
	CostOutputMTokUSD float64
	CostSearchUSD     float64
}

// Service drives runs one incident at a time and fans a batch across a
// worker pool
type Service struct {
	Ports domain.Ports
	Cfg   Config

	log *logger.Logger
	now func() time.Time
}

// New applies floor defaults so a zero Config still runs single-worker
func New(ports domain.Ports, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = enrichment.DefaultMaxRetries
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = 5
	}
	return &Service{
		Ports: ports,
		Cfg:   cfg,
		log:   logger.Named("enrich"),
		now:   time.Now,
	}
}

// RunIncident implements domain.RunnerPort
func (s *Service) RunIncident(
	ctx context.Context,
	incidentID string,
	dataset enrichment.DatasetType,
) (enrichment.State, error) {
	if !dataset.Valid() {
		return enrichment.State{}, perr.InvalidArgf("unknown dataset %q", dataset)
	}

	runID := uuid.New()
	st := enrichment.NewState(incidentID, dataset)
	st.MaxRetries = s.Cfg.MaxRetries

	var tr *trace
	if s.Ports.Audit != nil {
		tr = &trace{runID: runID, started: s.now()}
	}

	s.log.Debug().
		Str("run_id", runID.String()).
		Str("incident_id", incidentID).
		Str("dataset", string(dataset)).
		Msg("traversal start")

	row := s.runGraph(ctx, &st, tr)

	if !s.Cfg.DryRun {
		if err := s.Ports.Outcomes.InsertRun(ctx, s.outcome(runID, &st, row)); err != nil {
			return st, err
		}
	}
	if tr != nil {
		if err := s.Ports.Audit.RecordHops(ctx, tr.events); err != nil {
			s.log.Warn().Str("run_id", runID.String()).Err(err).Msg("stage audit write failed")
		}
	}

	if st.CurrentStage == enrichment.StageComplete {
		s.log.Info().
			Str("run_id", runID.String()).
			Str("incident_id", incidentID).
			Int("fields", len(st.ExtractedFields)).
			Int("retries", st.RetryCount).
			Float64("cost_usd", st.CostUSD).
			Msg("traversal complete")
	} else {
		reason := ""
		if st.EscalationReason != nil {
			reason = string(*st.EscalationReason)
		}
		s.log.Warn().
			Str("run_id", runID.String()).
			Str("incident_id", incidentID).
			Str("reason", reason).
			Int("retries", st.RetryCount).
			Msg("traversal escalated")
	}

	return st, nil
}

// outcome projects a terminal state onto its persisted row. The final
// strategy is the one the last search actually ran, not the ladder rung the
// coordinator armed next
func (s *Service) outcome(runID uuid.UUID, st *enrichment.State, row enrichment.IncidentRow) domain.Outcome {
	o := domain.Outcome{
		RunID:             runID,
		IncidentID:        st.IncidentID,
		Dataset:           st.Dataset,
		Status:            domain.StatusOf(st.CurrentStage),
		EscalationReason:  st.EscalationReason,
		RetryCount:        st.RetryCount,
		FinalStrategy:     st.NextStrategy,
		AgencyName:        row.AgencyName,
		SearchAttempts:    st.SearchAttempts,
		ValidationResults: st.ValidationResults,
		ExtractedFields:   st.ExtractedFields,
		ConflictingFields: st.ConflictingFields,
		ReasoningSummary:  RenderSummary(st),
		CostUSD:           st.CostUSD,
		ErrorMessage:      st.ErrorMessage,
		CreatedAt:         s.now().UTC(),
	}
	if a := st.LastAttempt(); a != nil {
		o.FinalStrategy = a.Strategy
	}
	return o
}

// RunBatch implements domain.RunnerPort
func (s *Service) RunBatch(ctx context.Context, in domain.BatchInput) (domain.BatchReport, error) {
	if !in.Dataset.Valid() {
		return domain.BatchReport{}, perr.InvalidArgf("unknown dataset %q", in.Dataset)
	}

	ids := in.IncidentIDs
	if len(ids) == 0 {
		if in.FromID <= 0 || in.ToID < in.FromID {
			return domain.BatchReport{}, perr.InvalidArgf(
				"batch needs incident ids or a range, got %d..%d", in.FromID, in.ToID)
		}
		ids = make([]string, 0, in.ToID-in.FromID+1)
		for id := in.FromID; id <= in.ToID; id++ {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
	}

	type slot struct {
		status domain.RunStatus
		cost   float64
		failed bool
	}
	out := make([]slot, len(ids))

	sem := make(chan struct{}, s.Cfg.Workers)
	wg := sync.WaitGroup{}
	for i := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem; wg.Done() }()
			st, err := s.RunIncident(ctx, ids[i], in.Dataset)
			if err != nil {
				s.log.Error().Str("incident_id", ids[i]).Err(err).Msg("traversal aborted")
				out[i] = slot{failed: true, cost: st.CostUSD}
				return
			}
			out[i] = slot{status: domain.StatusOf(st.CurrentStage), cost: st.CostUSD}
		}(i)
	}
	wg.Wait()

	rep := domain.BatchReport{Total: len(ids)}
	for _, r := range out {
		switch {
		case r.failed:
			rep.Failed++
		case r.status == domain.RunComplete:
			rep.Completed++
		default:
			rep.Escalated++
		}
		rep.CostUSD += r.cost
	}

	s.log.Info().
		Int("total", rep.Total).
		Int("completed", rep.Completed).
		Int("escalated", rep.Escalated).
		Int("failed", rep.Failed).
		Float64("cost_usd", rep.CostUSD).
		Msg("batch finished")
	return rep, nil
}
