// Package telemetry 提供基于 OpenTelemetry 的链路追踪初始化
//
// 只有在环境变量 OTEL_EXPORTER_OTLP_ENDPOINT 非空时才会创建 OTLP HTTP 导出器；
// 否则 Setup 不做任何事，Tracer 返回的是全局默认（no-op）追踪器。
package telemetry

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "runner"
	serviceVersion = "0.1.0"

	// EndpointEnv 导出端点环境变量
	EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// ShutdownFunc 退出时调用，负责刷新并关闭导出器
type ShutdownFunc func(context.Context) error

// newExporter 创建 OTLP HTTP 导出器，测试中可替换
var newExporter = func(ctx context.Context) (sdktrace.SpanExporter, error) {
	return otlptracehttp.New(ctx)
}

func noopShutdown(context.Context) error { return nil }

// Enabled 是否配置了导出端点
func Enabled() bool {
	return os.Getenv(EndpointEnv) != ""
}

// Setup 初始化链路追踪
//
// 导出器配置（端点、请求头等）完全来自标准 OTEL_* 环境变量。
//
// 返回:
//   - ShutdownFunc: 永远非 nil，未启用或初始化失败时为空操作
//   - error: 导出器或资源创建失败时返回错误
func Setup(ctx context.Context) (ShutdownFunc, error) {
	if !Enabled() {
		log.Printf("[Telemetry] %s not set, tracing disabled", EndpointEnv)
		return noopShutdown, nil
	}

	exporter, err := newExporter(ctx)
	if err != nil {
		return noopShutdown, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		if shutdownErr := exporter.Shutdown(ctx); shutdownErr != nil {
			log.Printf("[Telemetry] Error shutting down exporter: %v", shutdownErr)
		}
		return noopShutdown, fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Printf("[Telemetry] Tracing enabled (service=%s)", serviceName)
	return tp.Shutdown, nil
}

// Tracer 返回指定组件的追踪器
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer 返回不记录任何数据的追踪器（测试与无头工具使用）
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
