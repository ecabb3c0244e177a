// Package trace 初始化全局 OpenTelemetry TracerProvider，并提供 Gin 中间件。
//
// Enabled 为 true 时通过 OTLP gRPC 导出到 Collector（Tempo、Jaeger 等）；
// 为 false 时仍安装本地 Provider，请求依然拥有 TraceID，日志可以据此关联。
package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/flake/xerrors"
)

// Shutdown 刷新并关闭 TracerProvider
type Shutdown func(context.Context) error

// Init 按配置安装全局 TracerProvider 与 W3C 传播器
func Init(ctx context.Context, cfg *Config) (Shutdown, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "config is nil"), "config_required")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Sampler))),
	}

	if cfg.Enabled {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithTimeout(5 * time.Second),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, xerrors.Wrap(err, "create otlp exporter")
		}
		if cfg.Batcher == BatcherSimple {
			tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		}
	}

	return install(sdktrace.NewTracerProvider(tpOpts...)), nil
}

// Discard 安装不导出的 TracerProvider，仅生成 TraceID
func Discard(serviceName string) (Shutdown, error) {
	return Init(context.Background(), &Config{ServiceName: serviceName, Sampler: 1.0})
}

func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, xerrors.Wrap(err, "create resource")
	}
	return res, nil
}

func install(tp *sdktrace.TracerProvider) Shutdown {
	otel.SetTracerProvider(tp)
	// TraceContext 对应 traceparent 头，Baggage 透传自定义 KV
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
