package systems

import (
	"log"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/ecs"
	"github.com/decker502/runner/pkg/geom"
	"github.com/decker502/runner/pkg/lanes"
)

// LaneSource 车道表来源（lanes.Partitioner 实现了该接口）
type LaneSource interface {
	Table() *lanes.LaneTable
}

// MotionState 角色运动状态快照（只读，供镜头/动画协作者使用）
type MotionState struct {
	Lane         int
	TargetX      float64
	JumpPhase    components.JumpPhase
	JumpTimer    float64
	Sliding      bool
	SlideElapsed float64
}

// MotionSystem 角色运动系统
//
// 职责：
//   - 根据换道输入更新目标车道（限制在 [0, 车道数-1]，不回绕）
//   - 每帧把角色 X 坐标匀速推向目标车道中心，不越过目标
//   - 驱动跳跃子状态机（Idle → Ascending → Descending → Idle）
//   - 驱动滑铲子状态机（Idle → Sliding → Idle）
//
// 跳跃与滑铲互相独立，可以同时进行；二者一旦开始都会完整执行，
// 运行中的重复触发会被忽略。
type MotionSystem struct {
	entityManager *ecs.EntityManager
	lanes         LaneSource
}

// NewMotionSystem 创建角色运动系统
//
// 参数:
//   - em: 实体管理器
//   - source: 车道表来源，可为 nil（此时不做横向移动）
func NewMotionSystem(em *ecs.EntityManager, source LaneSource) *MotionSystem {
	return &MotionSystem{
		entityManager: em,
		lanes:         source,
	}
}

// Update 推进一帧
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒）
//   - input: 本帧的边沿触发输入
func (s *MotionSystem) Update(deltaTime float64, input components.InputEdge) {
	var table *lanes.LaneTable
	if s.lanes != nil {
		table = s.lanes.Table()
	}

	entities := ecs.GetEntitiesWith2[
		*components.TransformComponent,
		*components.LaneRunnerComponent,
	](s.entityManager)

	for _, entityID := range entities {
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, entityID)
		runner, _ := ecs.GetComponent[*components.LaneRunnerComponent](s.entityManager, entityID)

		s.updateLane(entityID, runner, input, table)
		s.moveLateral(transform, runner, table, deltaTime)

		if jump, ok := ecs.GetComponent[*components.JumpComponent](s.entityManager, entityID); ok {
			s.updateJump(entityID, transform, jump, input.Jump, deltaTime)
		}
		if slide, ok := ecs.GetComponent[*components.SlideComponent](s.entityManager, entityID); ok {
			s.updateSlide(entityID, transform, slide, input.Slide, deltaTime)
		}
	}
}

// State 返回实体的运动状态快照
func (s *MotionSystem) State(entityID ecs.EntityID) MotionState {
	state := MotionState{Lane: lanes.NotFound}

	if runner, ok := ecs.GetComponent[*components.LaneRunnerComponent](s.entityManager, entityID); ok {
		state.Lane = runner.CurrentLane
		state.TargetX = runner.TargetX
	}
	if jump, ok := ecs.GetComponent[*components.JumpComponent](s.entityManager, entityID); ok {
		state.JumpPhase = jump.Phase
		state.JumpTimer = jump.Timer
	}
	if slide, ok := ecs.GetComponent[*components.SlideComponent](s.entityManager, entityID); ok {
		state.Sliding = slide.Active
		state.SlideElapsed = slide.Elapsed
	}
	return state
}

// updateLane 处理换道输入
func (s *MotionSystem) updateLane(
	entityID ecs.EntityID,
	runner *components.LaneRunnerComponent,
	input components.InputEdge,
	table *lanes.LaneTable,
) {
	laneCount := table.Count()
	if laneCount == 0 {
		laneCount = lanes.DefaultLaneCount
	}

	previous := runner.CurrentLane
	if input.LaneLeft {
		runner.CurrentLane = geom.ClampInt(runner.CurrentLane-1, 0, laneCount-1)
	}
	if input.LaneRight {
		runner.CurrentLane = geom.ClampInt(runner.CurrentLane+1, 0, laneCount-1)
	}

	if runner.CurrentLane != previous {
		log.Printf("[MotionSystem] Entity %d switching lane %d -> %d", entityID, previous, runner.CurrentLane)
	}
}

// moveLateral 把 X 坐标推向当前车道中心
//
// 只改变 X；Y 与 Z 保持当前值。没有车道表时不移动。
func (s *MotionSystem) moveLateral(
	transform *components.TransformComponent,
	runner *components.LaneRunnerComponent,
	table *lanes.LaneTable,
	deltaTime float64,
) {
	center, ok := table.Center(runner.CurrentLane)
	if !ok {
		return
	}

	runner.TargetX = center.X
	transform.Position.X = geom.MoveTowards(transform.Position.X, runner.TargetX, runner.SwitchSpeed*deltaTime)
}

// updateJump 驱动跳跃子状态机
//
// 每个阶段在到达目标高度或经过半程时长后结束（先到者为准），
// 以容忍帧率波动。落地时 Y 被精确对齐到起跳高度。
func (s *MotionSystem) updateJump(
	entityID ecs.EntityID,
	transform *components.TransformComponent,
	jump *components.JumpComponent,
	trigger bool,
	deltaTime float64,
) {
	if trigger && !jump.IsJumping() {
		jump.Phase = components.JumpAscending
		jump.StartY = transform.Position.Y
		jump.TargetY = jump.StartY + jump.Height
		jump.Timer = 0
		log.Printf("[MotionSystem] Entity %d jump started (startY=%.3f, peakY=%.3f)", entityID, jump.StartY, jump.TargetY)
	}

	if !jump.IsJumping() {
		return
	}

	speed := jump.VerticalSpeed()
	halfDuration := jump.Duration / 2
	jump.Timer += deltaTime

	switch jump.Phase {
	case components.JumpAscending:
		newY := geom.MoveTowards(transform.Position.Y, jump.TargetY, speed*deltaTime)
		transform.Position.Y = newY

		if geom.Approximately(newY, jump.TargetY) || jump.Timer >= halfDuration {
			jump.Phase = components.JumpDescending
			jump.Timer = 0
		}

	case components.JumpDescending:
		newY := geom.MoveTowards(transform.Position.Y, jump.StartY, speed*deltaTime)
		transform.Position.Y = newY

		if geom.Approximately(newY, jump.StartY) || jump.Timer >= halfDuration {
			jump.Phase = components.JumpIdle
			jump.Timer = 0
			// 消除插值残差
			transform.Position.Y = jump.StartY
			log.Printf("[MotionSystem] Entity %d landed (y=%.3f)", entityID, jump.StartY)
		}
	}
}

// updateSlide 驱动滑铲子状态机
//
// 结束时朝向重置为单位朝向，而不是触发时捕获的朝向。
func (s *MotionSystem) updateSlide(
	entityID ecs.EntityID,
	transform *components.TransformComponent,
	slide *components.SlideComponent,
	trigger bool,
	deltaTime float64,
) {
	if trigger && !slide.Active {
		slide.Active = true
		slide.Elapsed = 0
		slide.StartRotation = transform.Rotation
		slide.TargetRotation = geom.Pitch(slide.PitchDegrees)
		log.Printf("[MotionSystem] Entity %d slide started (pitch %.1f -> %.1f)",
			entityID, geom.PitchDegrees(slide.StartRotation), slide.PitchDegrees)
	}

	if !slide.Active {
		return
	}

	slide.Elapsed += deltaTime
	t := geom.Clamp01(slide.Elapsed / slide.Duration)
	transform.Rotation = geom.Slerp(slide.StartRotation, slide.TargetRotation, t)

	if slide.Elapsed >= slide.Duration {
		slide.Active = false
		transform.Rotation = geom.Identity
		log.Printf("[MotionSystem] Entity %d slide finished", entityID)
	}
}
