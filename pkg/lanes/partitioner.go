package lanes

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// LaneSettings 车道划分参数
type LaneSettings struct {
	Count         int     // 车道数量
	Spacing       float64 // 相邻车道间距
	CreateMarkers bool    // 是否向 MarkerSink 发布车道标记
}

// LaneMarker 车道标记（纯数据，由渲染方消费）
type LaneMarker struct {
	Index    int
	Position r3.Vec
	Rotation quat.Number
}

// MarkerSink 车道标记的消费方（可视化协作者）
//
// 仅做展示用途，Partitioner 不会回读。
type MarkerSink interface {
	PublishLaneMarkers(markers []LaneMarker)
}

// Partitioner 地面划分器
//
// 职责：
//   - 解析地面几何（显式地面优先，其次是后备包围盒）
//   - 计算车道表并以原子替换的方式发布
//   - 可选地向 MarkerSink 发布车道标记
//
// 失败的重建不会改动已发布的车道表。
type Partitioner struct {
	ground   GeometryProvider
	fallback GeometryProvider
	settings LaneSettings
	markers  MarkerSink
	tracer   trace.Tracer

	table atomic.Pointer[LaneTable]
}

// PartitionerOption Partitioner 可选配置
type PartitionerOption func(*Partitioner)

// WithFallback 设置后备包围盒（地面不可用时使用，可能包含墙体）
func WithFallback(fallback GeometryProvider) PartitionerOption {
	return func(p *Partitioner) {
		p.fallback = fallback
	}
}

// WithMarkerSink 设置车道标记消费方
func WithMarkerSink(sink MarkerSink) PartitionerOption {
	return func(p *Partitioner) {
		p.markers = sink
	}
}

// WithTracer 设置链路追踪器
func WithTracer(tracer trace.Tracer) PartitionerOption {
	return func(p *Partitioner) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// NewPartitioner 创建地面划分器
//
// 参数:
//   - ground: 显式地面几何，可为 nil
//   - settings: 车道参数
//   - opts: 可选配置
//
// 创建时不会计算车道，需调用 Rebuild。
func NewPartitioner(ground GeometryProvider, settings LaneSettings, opts ...PartitionerOption) *Partitioner {
	p := &Partitioner{
		ground:   ground,
		settings: settings,
		tracer:   noop.NewTracerProvider().Tracer("lanes"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Table 返回当前已发布的车道表，从未成功构建时返回 nil
func (p *Partitioner) Table() *LaneTable {
	return p.table.Load()
}

// Settings 返回当前车道参数
func (p *Partitioner) Settings() LaneSettings {
	return p.settings
}

// Reconfigure 更新车道参数并立即重建
//
// 重建失败时参数仍会更新，但已发布的车道表保持不变。
func (p *Partitioner) Reconfigure(ctx context.Context, settings LaneSettings) error {
	p.settings = settings
	return p.Rebuild(ctx)
}

// Rebuild 重新计算并发布车道表
//
// 返回:
//   - error: 无可用几何时包装 ErrMissingReference；车道参数无效时包装 ErrConfiguration
func (p *Partitioner) Rebuild(ctx context.Context) error {
	_, span := p.tracer.Start(ctx, "lanes.Rebuild",
		trace.WithAttributes(
			attribute.Int("lanes.count", p.settings.Count),
			attribute.Float64("lanes.spacing", p.settings.Spacing),
		))
	defer span.End()

	field, err := p.resolveField()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("[Partitioner] Error: %v", err)
		return err
	}

	table, err := ComputeLanes(field, p.settings.Count, p.settings.Spacing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("[Partitioner] Error: %v (keeping previous lane table)", err)
		return fmt.Errorf("failed to compute lanes: %w", err)
	}

	p.table.Store(table)
	span.SetAttributes(attribute.Float64("lanes.width", table.LaneWidth()))
	log.Printf("[Partitioner] Published %d lanes (width=%.3f, spacing=%.3f)",
		table.Count(), table.LaneWidth(), table.LaneSpacing())

	if p.settings.CreateMarkers && p.markers != nil {
		p.markers.PublishLaneMarkers(Markers(table))
	}
	return nil
}

// resolveField 解析地面几何
func (p *Partitioner) resolveField() (Field, error) {
	if p.ground != nil {
		if field, ok := p.ground.Bounds(); ok {
			return field, nil
		}
	}

	if p.fallback != nil {
		if field, ok := p.fallback.Bounds(); ok {
			log.Printf("[Partitioner] Warning: No ground geometry available. Using fallback bounds, which may include walls.")
			return field, nil
		}
	}

	return Field{}, fmt.Errorf("%w: assign a ground geometry or a fallback bounding volume", ErrMissingReference)
}

// Markers 为车道表生成标记，朝向与地面一致
func Markers(table *LaneTable) []LaneMarker {
	markers := make([]LaneMarker, 0, table.Count())
	for i := 0; i < table.Count(); i++ {
		center, _ := table.Center(i)
		markers = append(markers, LaneMarker{
			Index:    i,
			Position: center,
			Rotation: table.Orientation(),
		})
	}
	return markers
}
