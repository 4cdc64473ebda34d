// Package modkit defines what a module is and the deps bundle modules are
// built from
package modkit

import (
	"newshound/internal/modkit/repokit"
	"newshound/internal/platform/config"
	"newshound/internal/platform/logger"
	"newshound/internal/platform/store"
)

// Deps is the bundle every module constructor receives. It carries the
// shared seams and nothing else, modules build their own layers on top
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// ZeroOK reports that a zero Deps is usable, which keeps module tests free
// of wiring. Optional seams like CH still need their own nil checks
func (d Deps) ZeroOK() bool { return true }
