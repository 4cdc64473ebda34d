package pg

import (
	"context"

	"newshound/internal/platform/logger"
	pnet "newshound/internal/platform/net"

	"github.com/rs/zerolog"
)

// QueryEvent is one executed statement as seen by the sql adapter
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// maxSQLRunes caps the compacted statement in log lines. Payload upserts
// inline article JSON and nobody needs the full text in a log
const maxSQLRunes = 600

// Tracer returns a tracer that prints every statement when LOG_SQL is on.
// It pins its own level so a quiet root logger cannot silence it
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	// normal queries at Info, slow ones at Warn
	elapsedMs := float64(ev.ElapsedUS) / 1000.0
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	// queries issued on behalf of an API request carry its id
	if reqID := pnet.RequestID(ctx); reqID != "" {
		evt = evt.Str("request_id", reqID)
	}

	evt.Float64("elapsed_ms", elapsedMs).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact collapses whitespace runs and caps length so multi-line statements
// log as one readable line
func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch r {
		case '\n', '\t', '\r', ' ':
			if space {
				continue
			}
			out = append(out, ' ')
			space = true
		default:
			space = false
			out = append(out, r)
		}
		if len(out) >= maxSQLRunes {
			return string(out) + "..."
		}
	}
	return string(out)
}
