package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"resumeforge/internal/layout"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               OTLPConfig
	Switches           MetricSwitches
}

// OTLPConfig locates an OTLP HTTP collector
type OTLPConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Headers  map[string]string
}

// MetricSwitches turns groups of application metrics on and off
type MetricSwitches struct {
	Generation      bool
	TrackDuration   bool
	TrackLayout     bool
	Infrastructure  bool
	TrackRateLimits bool
}

// AllMetrics enables every metric group.
func AllMetrics() MetricSwitches {
	return MetricSwitches{
		Generation:      true,
		TrackDuration:   true,
		TrackLayout:     true,
		Infrastructure:  true,
		TrackRateLimits: true,
	}
}

// Metrics holds all custom metrics for resumeforge
type Metrics struct {
	DocumentsGenerated metric.Int64Counter
	DocumentPages      metric.Int64Histogram
	OverflowPages      metric.Int64Counter
	LayoutWarnings     metric.Int64Counter
	GenerationDuration metric.Float64Histogram

	RateLimitHits metric.Int64Counter

	switches MetricSwitches
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	extraReaders   []sdkmetric.Reader
	prometheusMux  *http.ServeMux
	prometheusStop func(context.Context) error
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig) (*ObservabilityManager, error) {
	return newManager(obsConfig)
}

func newManager(obsConfig ObservabilityConfig, readers ...sdkmetric.Reader) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig, extraReaders: readers}
	if !obsConfig.Enabled {
		om.metrics = &Metrics{}
		return om, nil
	}

	res, err := om.newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// newResource describes this service instance
func (om *ObservabilityManager) newResource() (*resource.Resource, error) {
	instance := om.config.ServiceInstance
	if instance == "" {
		instance = om.config.ServiceName + "-1"
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			semconv.ServiceInstanceID(instance),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing(res *resource.Resource) error {
	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	}

	switch {
	case om.config.ConsoleOutput:
		var stdOpts []stdouttrace.Option
		if om.config.PrettyPrint {
			stdOpts = append(stdOpts, stdouttrace.WithPrettyPrint())
		}
		exporter, err := stdouttrace.New(stdOpts...)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, trace.WithBatcher(exporter))
	case om.config.OTLP.Enabled:
		exporter, err := om.createOTLPExporter()
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics(res *resource.Resource) error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	readers := append([]sdkmetric.Reader(nil), om.extraReaders...)
	interval := om.collectionInterval()

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if om.config.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader(interval)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		om.prometheusMux = mux
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// initCustomMetrics creates all custom metrics for resumeforge
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	m := &Metrics{switches: om.config.Switches}
	var err error

	if m.DocumentsGenerated, err = meter.Int64Counter(
		"resumeforge_documents_generated_total",
		metric.WithDescription("Total number of documents rendered"),
	); err != nil {
		return fmt.Errorf("failed to create documents generated metric: %w", err)
	}

	if m.DocumentPages, err = meter.Int64Histogram(
		"resumeforge_document_pages",
		metric.WithDescription("Pages per rendered document"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 6, 8, 12),
	); err != nil {
		return fmt.Errorf("failed to create document pages metric: %w", err)
	}

	if m.OverflowPages, err = meter.Int64Counter(
		"resumeforge_overflow_pages_total",
		metric.WithDescription("Sidebar continuation pages spliced into documents"),
	); err != nil {
		return fmt.Errorf("failed to create overflow pages metric: %w", err)
	}

	if m.LayoutWarnings, err = meter.Int64Counter(
		"resumeforge_layout_warnings_total",
		metric.WithDescription("Layout warnings by kind"),
	); err != nil {
		return fmt.Errorf("failed to create layout warnings metric: %w", err)
	}

	if m.GenerationDuration, err = meter.Float64Histogram(
		"resumeforge_generation_duration_seconds",
		metric.WithDescription("Time spent composing and rendering a document"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create generation duration metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumeforge_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit rejections"),
	); err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	om.metrics = m
	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// PrometheusHandler serves the scrape endpoint when Prometheus is enabled.
func (om *ObservabilityManager) PrometheusHandler() http.Handler {
	if om == nil || om.prometheusMux == nil {
		return nil
	}
	return om.prometheusMux
}

// StartPrometheus serves the scrape endpoint on its own port.
func (om *ObservabilityManager) StartPrometheus() error {
	if om.prometheusMux == nil {
		return nil
	}
	stop, err := StartPrometheusServer(om.prometheusMux, om.config.Prometheus.Port)
	if err != nil {
		return err
	}
	om.prometheusStop = stop
	return nil
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	if om.prometheusStop != nil {
		if err := om.prometheusStop(ctx); err != nil {
			return err
		}
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Generation identifies a document being rendered.
type Generation struct {
	Template string
	Kind     string
	PageSize string
}

func (g Generation) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("template", g.Template),
		attribute.String("kind", g.Kind),
	}
}

// TrackGeneration runs fn inside a span and records its outcome.
func (om *ObservabilityManager) TrackGeneration(ctx context.Context, g Generation, fn func(context.Context) (*layout.Result, error)) (*layout.Result, error) {
	ctx, span := om.Tracer("resumeforge.render").Start(ctx, "render."+g.Kind,
		oteltrace.WithAttributes(g.attributes()...),
		oteltrace.WithAttributes(attribute.String("page_size", g.PageSize)))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	duration := time.Since(start).Seconds()

	om.GetMetrics().recordGeneration(ctx, g, result, err, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	if result != nil {
		span.SetAttributes(
			attribute.Int("layout.pages.main", result.MainPages),
			attribute.Int("layout.pages.overflow", result.OverflowPages),
			attribute.Int("layout.pages.total", result.TotalPages),
			attribute.Int("layout.warnings", len(result.Warnings)),
			attribute.Int("layout.failed_blocks", result.FailedBlocks),
		)
	}
	return result, nil
}

func (m *Metrics) recordGeneration(ctx context.Context, g Generation, result *layout.Result, err error, duration float64) {
	if m.DocumentsGenerated == nil || !m.switches.Generation {
		return
	}

	attrs := append(g.attributes(), attribute.Bool("success", err == nil))
	m.DocumentsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))

	if m.switches.TrackDuration {
		m.GenerationDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	}

	if err != nil || result == nil || !m.switches.TrackLayout {
		return
	}
	m.DocumentPages.Record(ctx, int64(result.TotalPages), metric.WithAttributes(g.attributes()...))
	if result.OverflowPages > 0 {
		m.OverflowPages.Add(ctx, int64(result.OverflowPages), metric.WithAttributes(g.attributes()...))
	}
	for _, w := range result.Warnings {
		m.LayoutWarnings.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", w.Kind)))
	}
}

// RecordRateLimitHit counts a rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limiter, endpoint string) {
	if m.RateLimitHits == nil || !m.switches.Infrastructure || !m.switches.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
		attribute.String("endpoint", endpoint),
	))
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	cfg := om.config.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader(interval time.Duration) (sdkmetric.Reader, error) {
	cfg := om.config.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.config.CollectionInterval > 0 {
		return om.config.CollectionInterval
	}
	return 15 * time.Second
}
