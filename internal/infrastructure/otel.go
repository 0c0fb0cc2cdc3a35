package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
)

// InstrumentationName names the tracer and meter of the pipeline
const InstrumentationName = "github.com/rlutes/90.1-cost-effectiveness-analysis"

// Telemetry holds the tracing and metrics providers of one process. With
// telemetry disabled the tracer and meter are no-ops.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *promclient.Registry
	Tracer         trace.Tracer
	Metrics        *PipelineMetrics

	metricsFile string
	traceFile   *os.File
	logger      *slog.Logger
}

// PipelineMetrics are the instruments recorded per entity
type PipelineMetrics struct {
	Entities      metric.Int64Counter
	RowsWritten   metric.Int64Counter
	RowsSkipped   metric.Int64Counter
	StageDuration metric.Float64Histogram
}

// InitializeTelemetry builds the providers described by cfg. Spans go to
// cfg.TraceFile when set; metrics are gathered into a Prometheus registry
// written to cfg.MetricsFile on Shutdown.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	t := &Telemetry{logger: logger, metricsFile: cfg.MetricsFile}

	if !cfg.Enabled {
		t.Tracer = tracenoop.NewTracerProvider().Tracer(InstrumentationName)
		metrics, err := CreatePipelineMetrics(metricnoop.NewMeterProvider().Meter(InstrumentationName))
		if err != nil {
			return nil, err
		}
		t.Metrics = metrics
		return t, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	t.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	t.Tracer = t.TracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(config.AppVersion))

	t.Registry = promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry), otelprom.WithoutTargetInfo())
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	metrics, err := CreatePipelineMetrics(t.MeterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(config.AppVersion)))
	if err != nil {
		t.closeTraceFile()
		return nil, err
	}
	t.Metrics = metrics

	logger.Info("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	entities, err := meter.Int64Counter(
		"cea_entities",
		metric.WithDescription("Entities processed, by stage and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create entities counter: %w", err)
	}

	rowsWritten, err := meter.Int64Counter(
		"cea_rows_written",
		metric.WithDescription("Table rows written to output files"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows written counter: %w", err)
	}

	rowsSkipped, err := meter.Int64Counter(
		"cea_rows_skipped",
		metric.WithDescription("Control file rows skipped"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows skipped counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"cea_stage_duration",
		metric.WithDescription("Time spent per entity"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &PipelineMetrics{
		Entities:      entities,
		RowsWritten:   rowsWritten,
		RowsSkipped:   rowsSkipped,
		StageDuration: duration,
	}, nil
}

// StartEntitySpan starts a span for one state, building or workbook
func (t *Telemetry) StartEntitySpan(ctx context.Context, stage, entity string) (context.Context, trace.Span) {
	return t.Tracer.Start(ctx, stage,
		trace.WithAttributes(
			attribute.String("cea.stage", stage),
			attribute.String("cea.entity", entity),
			attribute.String("cea.run_id", GetRunID(ctx)),
		))
}

// RecordEntity records the outcome of one entity
func (t *Telemetry) RecordEntity(ctx context.Context, stage, status string, rows int, elapsed time.Duration) {
	if t == nil || t.Metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", stage), attribute.String("status", status))
	t.Metrics.Entities.Add(ctx, 1, attrs)
	t.Metrics.StageDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
	if rows > 0 {
		t.Metrics.RowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// RecordSkippedRows counts control-file rows that were skipped
func (t *Telemetry) RecordSkippedRows(ctx context.Context, file string, n int) {
	if t == nil || t.Metrics == nil || n == 0 {
		return
	}
	t.Metrics.RowsSkipped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("file", filepath.Base(file))))
}

// WriteMetrics writes the gathered metrics in the Prometheus text format
func (t *Telemetry) WriteMetrics() error {
	if t.Registry == nil || t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Shutdown writes the metrics file and flushes the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if err := t.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
