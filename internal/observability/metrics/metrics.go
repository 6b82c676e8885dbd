package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	enrollmentChanges metric.Int64Counter
	downloadGrants    metric.Int64Counter
	downloadEvents    metric.Int64Counter
	syncRuns          metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "coursesync"
	}
	meter := provider.Meter(name)

	enrollmentChanges, err := meter.Int64Counter("coursesync_enrollment_changes_total")
	if err != nil {
		return nil, err
	}
	downloadGrants, err := meter.Int64Counter("coursesync_download_grants_total")
	if err != nil {
		return nil, err
	}
	downloadEvents, err := meter.Int64Counter("coursesync_download_events_total")
	if err != nil {
		return nil, err
	}
	syncRuns, err := meter.Int64Counter("coursesync_sync_runs_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		enrollmentChanges: enrollmentChanges,
		downloadGrants:    downloadGrants,
		downloadEvents:    downloadEvents,
		syncRuns:          syncRuns,
	}, nil
}

// RecordEnrollmentChange increments enrollment transition counts.
func (m *Metrics) RecordEnrollmentChange(ctx context.Context, transition, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("transition", strings.TrimSpace(transition)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.enrollmentChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDownloadGrant increments granted download permission counts.
func (m *Metrics) RecordDownloadGrant(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.downloadGrants.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDownloadEvent increments recorded download counts.
func (m *Metrics) RecordDownloadEvent(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.downloadEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSyncRun increments reconciliation run counts.
func (m *Metrics) RecordSyncRun(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.syncRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"transition":  {},
	"reason":      {},
	"source":      {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
	"event_type":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
