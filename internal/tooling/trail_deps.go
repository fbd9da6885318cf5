package tooling

import (
	"context"
	"log/slog"

	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// QueryExecutor abstracts the Overpass backend for testability.
type QueryExecutor interface {
	Execute(ctx context.Context, q trails.QueryDocument) (trails.ResultSet, error)
}

// TrailDeps bundles the collaborators shared by the trail tools: the query
// builder, the backend executor, the summary display cap, and an optional
// logger.
type TrailDeps struct {
	Builder    *trails.Builder
	Executor   QueryExecutor
	DisplayCap int
	Logger     *slog.Logger // optional; nil uses slog.Default()
}

// log returns the configured logger, falling back to the default slog logger.
func (d TrailDeps) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
