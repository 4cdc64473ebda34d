package domain

import "context"

// ServicePort is the review surface other modules program against
type ServicePort interface {
	List(ctx context.Context, in ListInput) (ListOutput, error)
	Get(ctx context.Context, runID string) (RunDetail, error)
	Stats(ctx context.Context, in StatsInput) ([]StatsRow, error)

	// Resolve stamps the run reviewed by the bearer identity on the context
	Resolve(ctx context.Context, in ResolveInput) (ResolveOutput, error)
}
