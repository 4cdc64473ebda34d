package store

import "time"

// Config is the full store shape. Open reads it once and owns both
// backends from then on
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig drives the pgx pool and its statement tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot behavior, zero values take the defaults below
	ConnectRetries int           // default 6, roughly a minute of backoff
	PingTimeout    time.Duration // default 5s
}

// CHConfig covers the audit backend. Enabled false leaves the CH seam nil
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag pass through to system.query_log
	ClientName string
	ClientTag  string
}
