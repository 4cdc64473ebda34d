package repo

import (
	"context"

	perr "newshound/internal/platform/errors"
	"newshound/internal/platform/store"
	"newshound/internal/services/enrich/domain"
)

// stageEventsTable is the columnar audit table. Inserts are positional, so
// the row shape below must match the DDL column order
const stageEventsTable = "newshound.stage_events"

type chAudit struct{ ch store.Clickhouse }

// NewAudit returns the ClickHouse backed audit sink for stage events
func NewAudit(ch store.Clickhouse) domain.AuditPort { return &chAudit{ch: ch} }

// RecordHops implements domain.AuditPort. One traversal = one batch
func (a *chAudit) RecordHops(ctx context.Context, events []domain.StageEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		reason := ""
		if e.EscalationReason != nil {
			reason = string(*e.EscalationReason)
		}
		rows = append(rows, []any{
			e.RunID.String(),
			e.IncidentID,
			string(e.Dataset),
			string(e.Stage),
			string(e.NextStage),
			string(e.Strategy),
			uint8(e.RetryCount),
			reason,
			uint16(e.ArticleCount),
			uint64(e.Duration.Milliseconds()),
			e.TS,
		})
	}
	if err := a.ch.Insert(ctx, stageEventsTable, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "insert stage events")
	}
	return nil
}

var _ domain.AuditPort = (*chAudit)(nil)
