package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/game"
	"github.com/decker502/runner/pkg/geom"
	"github.com/decker502/runner/pkg/lanes"
)

// 绘制颜色
var (
	groundColor    = color.RGBA{R: 52, G: 60, B: 72, A: 255}
	gizmoColor     = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	markerColor    = color.RGBA{R: 90, G: 200, B: 255, A: 255}
	avatarColor    = color.RGBA{R: 255, G: 120, B: 80, A: 255}
	slideColor     = color.RGBA{R: 200, G: 90, B: 255, A: 255}
	shadowColor    = color.RGBA{R: 0, G: 0, B: 0, A: 110}
	lookAtColor    = color.RGBA{R: 255, G: 255, B: 255, A: 160}
	targetLaneLine = color.RGBA{R: 255, G: 120, B: 80, A: 90}
)

// Frame 一帧需要绘制的数据
type Frame struct {
	Simulation  *game.Simulation
	Markers     []lanes.LaneMarker
	ShowMarkers bool
	ShowGizmo   bool
}

// TopDownView 俯视调试视图
//
// 世界 X 轴映射为屏幕横向，Z 轴（前进方向）映射为屏幕纵向向上；
// 视图纵向跟随镜头注视点，角色固定在屏幕下方四分之三处附近。
type TopDownView struct {
	width, height int

	// PixelsPerUnit 每个世界单位对应的像素数
	PixelsPerUnit float64

	// AnchorY 镜头注视点在屏幕上的纵向位置（像素）
	AnchorY float64
}

// NewTopDownView 创建俯视视图
func NewTopDownView(width, height int) *TopDownView {
	return &TopDownView{
		width:         width,
		height:        height,
		PixelsPerUnit: 48,
		AnchorY:       float64(height) * 0.75,
	}
}

// WorldToScreen 把世界坐标投影到屏幕坐标
//
// 参数:
//   - p: 世界坐标
//   - focusZ: 视图纵向对齐的世界 Z 坐标（通常为镜头注视点）
func (v *TopDownView) WorldToScreen(p r3.Vec, focusZ float64) (float64, float64) {
	x := float64(v.width)/2 + p.X*v.PixelsPerUnit
	y := v.AnchorY - (p.Z-focusZ)*v.PixelsPerUnit
	return x, y
}

// Draw 绘制地面、车道、标记、角色以及调试文字
func (v *TopDownView) Draw(screen *ebiten.Image, frame Frame) {
	sim := frame.Simulation
	if sim == nil {
		return
	}

	focusZ := 0.0
	if camera, ok := sim.Camera(); ok {
		focusZ = camera.LookAt.Z
	}

	table := sim.LaneTable()
	v.drawGround(screen, table, focusZ)

	if frame.ShowGizmo {
		v.drawGizmo(screen, table, focusZ)
	}
	if frame.ShowMarkers {
		v.drawMarkers(screen, frame.Markers, focusZ)
	}

	transform, ok := sim.Transform()
	if ok {
		v.drawAvatar(screen, sim, transform, focusZ)
	}

	v.drawDebugText(screen, sim, transform)
}

// drawGround 绘制地面范围
func (v *TopDownView) drawGround(screen *ebiten.Image, table *lanes.LaneTable, focusZ float64) {
	if table.Count() == 0 {
		return
	}

	first, _ := table.Center(0)
	halfWidth := table.FieldWidth() / 2
	halfDepth := table.FieldDepth() / 2

	// 地面中心 = 车道中心连线的中点
	last, _ := table.Center(table.Count() - 1)
	center := r3.Scale(0.5, r3.Add(first, last))

	x0, y0 := v.WorldToScreen(r3.Vec{X: center.X - halfWidth, Z: center.Z + halfDepth}, focusZ)
	x1, y1 := v.WorldToScreen(r3.Vec{X: center.X + halfWidth, Z: center.Z - halfDepth}, focusZ)
	vector.DrawFilledRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), groundColor, false)
}

// drawGizmo 为每条车道绘制一个 宽 × 纵深 的线框
func (v *TopDownView) drawGizmo(screen *ebiten.Image, table *lanes.LaneTable, focusZ float64) {
	if table.Count() == 0 {
		return
	}

	halfWidth := table.LaneWidth() / 2
	halfDepth := table.FieldDepth() / 2

	for _, center := range table.Centers() {
		x0, y0 := v.WorldToScreen(r3.Vec{X: center.X - halfWidth, Z: center.Z + halfDepth}, focusZ)
		x1, y1 := v.WorldToScreen(r3.Vec{X: center.X + halfWidth, Z: center.Z - halfDepth}, focusZ)
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, gizmoColor, false)
	}
}

// drawMarkers 绘制车道标记：中心点加一段沿前进方向的短线
func (v *TopDownView) drawMarkers(screen *ebiten.Image, markers []lanes.LaneMarker, focusZ float64) {
	for _, marker := range markers {
		forward := geom.Rotate(marker.Rotation, geom.AxisZ)
		tip := r3.Add(marker.Position, forward)

		x0, y0 := v.WorldToScreen(marker.Position, focusZ)
		x1, y1 := v.WorldToScreen(tip, focusZ)
		vector.DrawFilledCircle(screen, float32(x0), float32(y0), 4, markerColor, true)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, markerColor, true)
	}
}

// drawAvatar 绘制角色
//
// 跳跃高度体现为与影子的偏移与半径放大；滑铲时换色并按俯仰角压扁。
func (v *TopDownView) drawAvatar(screen *ebiten.Image, sim *game.Simulation, transform components.TransformComponent, focusZ float64) {
	state := sim.MotionState()

	// 目标车道指示线
	if center, ok := sim.LaneTable().Center(state.Lane); ok {
		x, _ := v.WorldToScreen(center, focusZ)
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(v.height), 1, targetLaneLine, false)
	}

	ground := transform.Position
	ground.Y = 0
	sx, sy := v.WorldToScreen(ground, focusZ)
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), 12, shadowColor, true)

	height := transform.Position.Y
	radius := 12 + height*3
	ax, ay := sx, sy-height*v.PixelsPerUnit*0.25

	clr := avatarColor
	if state.Sliding {
		clr = slideColor
	}

	pitch := geom.AngleBetween(transform.Rotation, geom.Identity)
	squash := 1 - 0.6*pitch/90
	vector.DrawFilledRect(screen,
		float32(ax-radius), float32(ay-radius*squash),
		float32(radius*2), float32(radius*2*squash), clr, true)

	if camera, ok := sim.Camera(); ok {
		lx, ly := v.WorldToScreen(camera.LookAt, focusZ)
		vector.StrokeCircle(screen, float32(lx), float32(ly), 18, 1, lookAtColor, true)
	}
}

// drawDebugText 绘制调试信息
func (v *TopDownView) drawDebugText(screen *ebiten.Image, sim *game.Simulation, transform components.TransformComponent) {
	state := sim.MotionState()
	lines := []string{
		fmt.Sprintf("Session: %s", sim.SessionID),
		fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("Lane: %d  Observed: %d  TargetX: %.2f", state.Lane, sim.ObservedLane(), state.TargetX),
		fmt.Sprintf("Position: (%.2f, %.2f, %.2f)", transform.Position.X, transform.Position.Y, transform.Position.Z),
		fmt.Sprintf("Jump: %s (%.2fs)", state.JumpPhase, state.JumpTimer),
		fmt.Sprintf("Slide: %v (%.2fs, pitch %.1f)", state.Sliding, state.SlideElapsed, geom.PitchDegrees(transform.Rotation)),
		"Arrows/WASD: move  R: rebuild  G: gizmo  M: markers  F11: fullscreen",
	}

	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+i*16)
	}
}
