package usage

import (
	"context"
	"time"
)

// Store supplies ordered usage/cost facts. It is the collaborator boundary
// of the analytical core: implementations own the facts exclusively, the
// core only reads. Facts are returned sorted ascending by timestamp with a
// stable single currency; multi-currency normalization happens upstream.
type Store interface {
	// FetchUsage returns the cost series for a scope and date range
	FetchUsage(ctx context.Context, scope Scope, start, end time.Time) (*Series, error)

	// FetchResourceUsage returns per-resource usage facts aggregated over
	// the date range, for optimization scanning
	FetchResourceUsage(ctx context.Context, scope Scope, start, end time.Time) ([]ResourceUsage, error)
}
