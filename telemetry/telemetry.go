// Package telemetry collects hierarchical timings for a run of the
// interpreter and renders them as a tree.
//
// Collectors travel through context so that packages can be instrumented
// without changing their signatures. When no collector is present every
// call is a no-op.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "load input.txt")
//	// ... work ...
//	timer.End()
//
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/mymoney/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector records timed operations.
type Collector interface {
	// Start begins timing an operation. Operations started while another is
	// still running are nested under it.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector stored in ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}
