package module

import "newshound/internal/platform/config"

// Options holds configuration settings for the review module
type Options struct {
	// Tokens lists accepted bearer tokens for resolve, either bare
	// tokens or reviewer:token pairs
	Tokens []string
}

// FromConfig extracts Options from the given config.Conf. The api process
// hands modules a conf already scoped to CORE_API_
func FromConfig(cfg config.Conf) Options {
	return Options{
		Tokens: cfg.MayCSV("TOKENS", nil),
	}
}
