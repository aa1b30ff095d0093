package meshgo

import (
	"log/slog"

	"github.com/hupe1980/meshgo/catalog"
	"github.com/hupe1980/meshgo/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	maxConcurrency   int
	tolerance        float32
	resources        *resource.Controller
	catalog          catalog.Catalog
	dataset          string
}

// Option configures load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. tolerance-specific Load variants).
type Option func(*options)

// WithMaxConcurrency caps the number of piece files read in parallel
// during a multi-piece load. Zero or negative means one worker per piece.
//
// Single-file loads ignore this setting.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}

// WithTolerance overrides the vertex welding tolerance.
//
// Zero or negative selects the scale-relative default: the largest absolute
// bounding box coordinate scaled by 2^-23, so roughly one float32 ulp at the
// mesh extents. Two vertices closer than the tolerance are merged into one
// shared vertex.
//
// In multi-piece loads the tolerance applies within each piece; vertices are
// not merged across piece boundaries.
func WithTolerance(tolerance float32) Option {
	return func(o *options) {
		o.tolerance = tolerance
	}
}

// WithResources attaches a resource controller that bounds memory held by
// in-flight piece buffers, the number of concurrent piece workers across
// loads, and read bandwidth.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:  1 << 30, // 1 GiB of piece buffers
//	    MaxWorkers:        8,
//	    IOLimitBytesPerSec: 0,     // unlimited
//	})
//	mesh, _ := meshgo.Load(ctx, store, "run.pvtu", meshgo.WithResources(rc))
//
// Pass nil to disable resource control.
func WithResources(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithCatalog records a manifest of every successful load in c.
//
// dataset names the manifest lineage; successive loads with the same dataset
// produce increasing versions. An empty dataset falls back to the document
// name passed to Load. A failing catalog never fails the load itself.
//
// Example with the DynamoDB catalog:
//
//	cat := catalog.NewDynamoDBCatalog(client, "meshgo-catalog")
//	mesh, _ := meshgo.Load(ctx, store, "run.pvtu",
//	    meshgo.WithCatalog(cat, "turbine-run-42"))
func WithCatalog(c catalog.Catalog, dataset string) Option {
	return func(o *options) {
		o.catalog = c
		o.dataset = dataset
	}
}

// WithMetricsCollector configures a metrics collector for monitoring loads.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &meshgo.BasicMetricsCollector{}
//	mesh, _ := meshgo.Load(ctx, store, "run.vtu", meshgo.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Loads: %d, Avg latency: %dns\n", stats.LoadCount, stats.LoadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for loads.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := meshgo.NewJSONLogger(slog.LevelInfo)
//	mesh, _ := meshgo.Load(ctx, store, "run.vtu", meshgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
