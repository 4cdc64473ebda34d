package store

import (
	"newshound/internal/platform/logger"
)

// Option mutates the Store while Open assembles it.
type Option func(*Store) error

// WithLogger routes subclient logging (pool opens, query traces) through
// the given logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
