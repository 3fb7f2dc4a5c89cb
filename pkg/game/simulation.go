package game

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/config"
	"github.com/decker502/runner/pkg/ecs"
	"github.com/decker502/runner/pkg/geom"
	"github.com/decker502/runner/pkg/lanes"
	"github.com/decker502/runner/pkg/systems"
)

// ErrNotInitialized 在 Initialize 之前（或 Teardown 之后）推进模拟时返回
var ErrNotInitialized = errors.New("simulation not initialized")

// Simulation 跑酷场景的模拟驱动
//
// 生命周期：NewSimulation → Initialize → Advance（每帧一次）→ Teardown。
// 所有方法都应在同一个 goroutine（游戏主循环）中调用。
//
// 车道表可以在任意两帧之间通过 Rebuild/Reconfigure 重新计算，
// 重建只替换车道表，不会改动角色正在进行的跳跃或滑铲。
type Simulation struct {
	// SessionID 本次模拟的唯一标识（用于日志与链路追踪）
	SessionID uuid.UUID

	config *config.RunnerConfig
	tracer trace.Tracer

	entityManager      *ecs.EntityManager
	partitioner        *lanes.Partitioner
	motionSystem       *systems.MotionSystem
	laneTrackingSystem *systems.LaneTrackingSystem
	cameraSystem       *systems.CameraSystem

	avatar      ecs.EntityID
	initialized bool

	ticks   int
	elapsed float64
}

// SimulationOption Simulation 可选配置
type SimulationOption func(*simulationOptions)

type simulationOptions struct {
	ground  lanes.GeometryProvider
	markers lanes.MarkerSink
	tracer  trace.Tracer
}

// WithGround 使用自定义地面几何（默认使用配置中的 field）
func WithGround(ground lanes.GeometryProvider) SimulationOption {
	return func(o *simulationOptions) {
		o.ground = ground
	}
}

// WithLaneMarkers 设置车道标记消费方
func WithLaneMarkers(sink lanes.MarkerSink) SimulationOption {
	return func(o *simulationOptions) {
		o.markers = sink
	}
}

// WithSimulationTracer 设置链路追踪器
func WithSimulationTracer(tracer trace.Tracer) SimulationOption {
	return func(o *simulationOptions) {
		o.tracer = tracer
	}
}

// NewSimulation 创建模拟驱动
//
// 参数:
//   - cfg: 场景配置，nil 时使用默认配置
//   - opts: 可选配置
//
// 创建后不会计算车道，也不会生成角色，需调用 Initialize。
func NewSimulation(cfg *config.RunnerConfig, opts ...SimulationOption) *Simulation {
	if cfg == nil {
		cfg = config.DefaultRunnerConfig()
	}

	options := simulationOptions{
		ground: lanes.StaticGeometry{Field: cfg.Field.Field()},
		tracer: noop.NewTracerProvider().Tracer("game"),
	}
	for _, opt := range opts {
		opt(&options)
	}

	partitionerOpts := []lanes.PartitionerOption{lanes.WithTracer(options.tracer)}
	if cfg.FallbackBounds != nil {
		partitionerOpts = append(partitionerOpts,
			lanes.WithFallback(lanes.StaticGeometry{Field: cfg.FallbackBounds.Field()}))
	}
	if options.markers != nil {
		partitionerOpts = append(partitionerOpts, lanes.WithMarkerSink(options.markers))
	}

	em := ecs.NewEntityManager()
	partitioner := lanes.NewPartitioner(options.ground, cfg.Lanes.Settings(), partitionerOpts...)

	return &Simulation{
		SessionID:          uuid.New(),
		config:             cfg,
		tracer:             options.tracer,
		entityManager:      em,
		partitioner:        partitioner,
		motionSystem:       systems.NewMotionSystem(em, partitioner),
		laneTrackingSystem: systems.NewLaneTrackingSystem(em, partitioner),
		avatar:             ecs.InvalidEntity,
	}
}

// Initialize 计算车道表并生成角色与跟随镜头
//
// 角色生成在配置的初始位置，横向与纵深对齐到初始车道中心。
// 重复调用不会重新生成角色。
//
// 返回:
//   - error: 车道表无法构建时返回错误（包装 lanes.ErrMissingReference 或 lanes.ErrConfiguration）
func (s *Simulation) Initialize(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "simulation.Initialize",
		trace.WithAttributes(attribute.String("session.id", s.SessionID.String())))
	defer span.End()

	if s.initialized {
		log.Printf("[Simulation] Warning: Initialize called twice (session %s), ignoring", s.SessionID)
		return nil
	}

	if err := s.partitioner.Rebuild(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to build lanes: %w", err)
	}

	s.avatar = s.spawnAvatar()
	s.cameraSystem = systems.NewCameraSystem(s.entityManager, s.avatar, s.config.Camera.Offset.R3())
	s.laneTrackingSystem.Update(0)

	s.initialized = true
	s.ticks = 0
	s.elapsed = 0

	log.Printf("[Simulation] Initialized session %s (avatar=%d, lane=%d)",
		s.SessionID, s.avatar, s.config.Avatar.StartLane)
	return nil
}

// spawnAvatar 创建角色实体
func (s *Simulation) spawnAvatar() ecs.EntityID {
	cfg := s.config
	start := s.PositionToLane(cfg.Avatar.StartPosition.R3(), cfg.Avatar.StartLane)

	id := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, id, &components.TransformComponent{
		Position: start,
		Rotation: geom.Identity,
	})
	ecs.AddComponent(s.entityManager, id, &components.LaneRunnerComponent{
		CurrentLane: cfg.Avatar.StartLane,
		TargetX:     start.X,
		SwitchSpeed: cfg.Motion.LaneSwitchSpeed,
	})
	ecs.AddComponent(s.entityManager, id, &components.JumpComponent{
		Height:   cfg.Motion.JumpHeight,
		Duration: cfg.Motion.JumpDuration,
	})
	ecs.AddComponent(s.entityManager, id, &components.SlideComponent{
		Duration:     cfg.Motion.SlideDuration,
		PitchDegrees: cfg.Motion.SlidePitchDegrees,
	})
	ecs.AddComponent(s.entityManager, id, &components.LaneTrackingComponent{
		ObservedLane: lanes.NotFound,
		Tolerance:    cfg.Lanes.LocatorTolerance,
	})
	return id
}

// Advance 推进一帧
//
// 参数:
//   - deltaTime: 帧时长（秒），负值按 0 处理
//   - input: 本帧的边沿触发输入
//
// 返回:
//   - error: 未初始化时返回 ErrNotInitialized
func (s *Simulation) Advance(deltaTime float64, input components.InputEdge) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if deltaTime < 0 {
		deltaTime = 0
	}

	s.motionSystem.Update(deltaTime, input)
	s.laneTrackingSystem.Update(deltaTime)
	s.cameraSystem.Update(deltaTime)
	s.entityManager.RemoveMarkedEntities()

	s.ticks++
	s.elapsed += deltaTime
	return nil
}

// Teardown 销毁角色与镜头，回到未初始化状态
//
// 已发布的车道表保留，之后可以再次 Initialize。
func (s *Simulation) Teardown() {
	if !s.initialized {
		return
	}

	s.entityManager.Clear()
	s.avatar = ecs.InvalidEntity
	s.cameraSystem = nil
	s.initialized = false

	log.Printf("[Simulation] Session %s torn down after %d ticks (%.2fs)", s.SessionID, s.ticks, s.elapsed)
}

// Initialized 是否已初始化
func (s *Simulation) Initialized() bool {
	return s.initialized
}

// Rebuild 按当前参数重新计算车道表
//
// 失败时已发布的车道表保持不变。
func (s *Simulation) Rebuild(ctx context.Context) error {
	return s.partitioner.Rebuild(ctx)
}

// Reconfigure 使用新的车道参数重新计算车道表
//
// 车道数量仍会被固定为 3；定位容差同步更新到角色的车道追踪组件。
func (s *Simulation) Reconfigure(ctx context.Context, lanesConfig config.LanesConfig) error {
	next := *s.config
	next.Lanes = lanesConfig
	next.Normalize()
	s.config = &next

	if tracking, ok := ecs.GetComponent[*components.LaneTrackingComponent](s.entityManager, s.avatar); ok {
		tracking.Tolerance = next.Lanes.LocatorTolerance
	}

	return s.partitioner.Reconfigure(ctx, next.Lanes.Settings())
}

// LaneTable 返回当前已发布的车道表，可能为 nil
func (s *Simulation) LaneTable() *lanes.LaneTable {
	return s.partitioner.Table()
}

// GetLaneCenter 返回第 index 条车道的中心
//
// 索引无效（或尚无车道表）时记录警告，并返回角色当前位置。
func (s *Simulation) GetLaneCenter(index int) r3.Vec {
	if center, ok := s.LaneTable().Center(index); ok {
		return center
	}

	log.Printf("[Simulation] Warning: Lane index %d is out of range, returning avatar position", index)
	if transform, ok := s.Transform(); ok {
		return transform.Position
	}
	return r3.Vec{}
}

// PositionToLane 把 position 投影到第 index 条车道（保留竖直坐标）
//
// 索引无效时记录警告并原样返回 position。
func (s *Simulation) PositionToLane(position r3.Vec, index int) r3.Vec {
	projected, ok := lanes.ProjectToLane(position, s.LaneTable(), index)
	if !ok {
		log.Printf("[Simulation] Warning: Lane index %d is out of range, position left unchanged", index)
	}
	return projected
}

// CurrentLaneIndex 返回角色的目标车道索引，未初始化时返回 lanes.NotFound
func (s *Simulation) CurrentLaneIndex() int {
	return s.MotionState().Lane
}

// ObservedLane 返回按角色位置查询到的车道，换道途中为 lanes.NotFound
func (s *Simulation) ObservedLane() int {
	tracking, ok := ecs.GetComponent[*components.LaneTrackingComponent](s.entityManager, s.avatar)
	if !ok {
		return lanes.NotFound
	}
	return tracking.ObservedLane
}

// MotionState 返回角色的运动状态快照
func (s *Simulation) MotionState() systems.MotionState {
	return s.motionSystem.State(s.avatar)
}

// Transform 返回角色的位置与朝向（副本）
func (s *Simulation) Transform() (components.TransformComponent, bool) {
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.avatar)
	if !ok {
		return components.TransformComponent{}, false
	}
	return *transform, true
}

// Camera 返回跟随镜头状态（副本）
func (s *Simulation) Camera() (components.CameraComponent, bool) {
	if s.cameraSystem == nil {
		return components.CameraComponent{}, false
	}
	camera, ok := s.cameraSystem.Camera()
	if !ok {
		return components.CameraComponent{}, false
	}
	return *camera, true
}

// Avatar 返回角色实体ID，未初始化时为 ecs.InvalidEntity
func (s *Simulation) Avatar() ecs.EntityID {
	return s.avatar
}

// Config 返回当前配置
func (s *Simulation) Config() *config.RunnerConfig {
	return s.config
}

// Ticks 返回自 Initialize 以来推进的帧数
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Elapsed 返回自 Initialize 以来累计的模拟时间（秒）
func (s *Simulation) Elapsed() float64 {
	return s.elapsed
}
