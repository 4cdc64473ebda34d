package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"newshound/internal/core/enrichment"
	"newshound/internal/services/enrich/domain"
)

// trace accumulates one stage event per coordinator verdict plus a terminal
// event whose duration spans the whole traversal. A nil trace records
// nothing, which is how audit stays optional
type trace struct {
	runID   uuid.UUID
	started time.Time
	events  []domain.StageEvent
}

// hop records one verdict. Called after the decision is applied, so the
// state already carries the coordinator-owned fields for the next leg
func (t *trace) hop(st *enrichment.State, nodeTime time.Duration, ts time.Time) {
	if t == nil {
		return
	}
	t.events = append(t.events, domain.StageEvent{
		RunID:            t.runID,
		IncidentID:       st.IncidentID,
		Dataset:          st.Dataset,
		Stage:            st.CurrentStage,
		NextStage:        st.NextStage,
		Strategy:         st.NextStrategy,
		RetryCount:       st.RetryCount,
		EscalationReason: st.EscalationReason,
		ArticleCount:     len(st.RetrievedArticles),
		Duration:         nodeTime,
		TS:               ts,
	})
}

// terminal records the absorbing stage with the full traversal duration
func (t *trace) terminal(st *enrichment.State, ts time.Time) {
	if t == nil {
		return
	}
	t.events = append(t.events, domain.StageEvent{
		RunID:            t.runID,
		IncidentID:       st.IncidentID,
		Dataset:          st.Dataset,
		Stage:            st.CurrentStage,
		NextStage:        st.CurrentStage,
		Strategy:         st.NextStrategy,
		RetryCount:       st.RetryCount,
		EscalationReason: st.EscalationReason,
		ArticleCount:     len(st.RetrievedArticles),
		Duration:         ts.Sub(t.started),
		TS:               ts,
	})
}

// runGraph drives one state from extract to a terminal stage: node, verdict,
// route, repeat. Termination is guaranteed by the coordinator algebra, the
// only cycle is the search retry loop and every retry consumes a ladder
// rung. The router falls back to escalate for anything it cannot dispatch
func (s *Service) runGraph(ctx context.Context, st *enrichment.State, tr *trace) enrichment.IncidentRow {
	nodeStart := s.now()
	row := s.extractNode(ctx, st)

	for {
		d := enrichment.Decide(st)
		d.Apply(st)

		ts := s.now()
		tr.hop(st, ts.Sub(nodeStart), ts)
		s.log.Debug().
			Str("incident_id", st.IncidentID).
			Str("stage", string(st.CurrentStage)).
			Str("next_stage", string(st.NextStage)).
			Int("retry_count", st.RetryCount).
			Msg("stage transition")

		route := st.NextStage
		if !route.Routable() {
			route = enrichment.StageEscalate
		}

		switch route {
		case enrichment.StageSearch:
			nodeStart = s.now()
			s.searchNode(ctx, st)
		case enrichment.StageValidate:
			nodeStart = s.now()
			s.validateNode(st)
		case enrichment.StageMerge:
			nodeStart = s.now()
			s.mergeNode(ctx, st)
		case enrichment.StageComplete:
			enrichment.MarkComplete(st)
			tr.terminal(st, s.now())
			return row
		default:
			enrichment.MarkEscalated(st)
			tr.terminal(st, s.now())
			return row
		}
	}
}
