package module

import (
	"context"

	reviewdom "newshound/internal/services/api/review/domain"
	reviewsvc "newshound/internal/services/api/review/service"
)

// Ports hands out the ServicePort adapter for cross-module callers
func (m *Module) Ports() any { return m.ports }

// adaptReviewPort narrows the concrete service to domain.ServicePort so
// other modules depend on the domain shape, not this package
type adaptReviewPort struct{ svc reviewsvc.Service }

// List implements the domain ServicePort interface
func (a adaptReviewPort) List(ctx context.Context, in reviewdom.ListInput) (reviewdom.ListOutput, error) {
	return a.svc.List(ctx, in)
}

// Get implements the domain ServicePort interface
func (a adaptReviewPort) Get(ctx context.Context, runID string) (reviewdom.RunDetail, error) {
	return a.svc.Get(ctx, runID)
}

// Stats implements the domain ServicePort interface
func (a adaptReviewPort) Stats(ctx context.Context, in reviewdom.StatsInput) ([]reviewdom.StatsRow, error) {
	return a.svc.Stats(ctx, in)
}

// Resolve implements the domain ServicePort interface
func (a adaptReviewPort) Resolve(ctx context.Context, in reviewdom.ResolveInput) (reviewdom.ResolveOutput, error) {
	return a.svc.Resolve(ctx, in)
}
