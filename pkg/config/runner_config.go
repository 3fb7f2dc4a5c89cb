package config

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/decker502/runner/pkg/geom"
	"github.com/decker502/runner/pkg/lanes"
)

// DefaultConfigPath 默认配置文件路径（同时嵌入到二进制中）
const DefaultConfigPath = "data/runner.yaml"

// RunnerConfig 跑酷场景配置
//
// 配置文件位置: data/runner.yaml
type RunnerConfig struct {
	// Field 地面几何
	Field FieldConfig `yaml:"field"`

	// FallbackBounds 后备包围盒（地面不可用时使用），可省略
	FallbackBounds *FieldConfig `yaml:"fallbackBounds,omitempty"`

	// Lanes 车道划分参数
	Lanes LanesConfig `yaml:"lanes"`

	// Avatar 角色初始状态
	Avatar AvatarConfig `yaml:"avatar"`

	// Motion 角色运动参数
	Motion MotionConfig `yaml:"motion"`

	// Camera 跟随镜头参数
	Camera CameraConfig `yaml:"camera"`

	// Keys 键位映射
	Keys KeyBindings `yaml:"keys"`
}

// Vec3 YAML 友好的三维向量
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// R3 转换为 gonum 向量
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// FieldConfig 地面几何配置
type FieldConfig struct {
	Center Vec3 `yaml:"center"`
	Size   Vec3 `yaml:"size"` // x: 宽度, y: 厚度, z: 纵深
	// YawDegrees 绕竖直轴的朝向（度）
	YawDegrees float64 `yaml:"yawDegrees"`
}

// Field 转换为 lanes.Field
func (f FieldConfig) Field() lanes.Field {
	return lanes.Field{
		Center:      f.Center.R3(),
		Size:        f.Size.R3(),
		Orientation: f.Orientation(),
	}
}

// Orientation 地面朝向
func (f FieldConfig) Orientation() quat.Number {
	if f.YawDegrees == 0 {
		return geom.Identity
	}
	return geom.AxisAngle(geom.AxisY, f.YawDegrees)
}

// HasLateralAxis 地面横向基向量是否带有足够的 X 分量
//
// 偏航接近 ±90° 时横向轴与 X 轴垂直，车道无法沿 X 排布；180° 等反向朝向是允许的。
func (f FieldConfig) HasLateralAxis() bool {
	return math.Abs(f.Field().Right().X) > lanes.MinLateralComponent
}

// LanesConfig 车道划分配置
type LanesConfig struct {
	Count            int     `yaml:"count"`            // 车道数量（固定为 3）
	Spacing          float64 `yaml:"spacing"`          // 车道间距
	LocatorTolerance float64 `yaml:"locatorTolerance"` // 位置-车道匹配容差
	CreateMarkers    bool    `yaml:"createMarkers"`    // 是否发布车道标记
	ShowGizmo        bool    `yaml:"showGizmo"`        // 是否绘制车道范围框
}

// Settings 转换为 lanes.LaneSettings
func (l LanesConfig) Settings() lanes.LaneSettings {
	return lanes.LaneSettings{
		Count:         l.Count,
		Spacing:       l.Spacing,
		CreateMarkers: l.CreateMarkers,
	}
}

// AvatarConfig 角色初始状态
type AvatarConfig struct {
	StartLane     int  `yaml:"startLane"`     // 初始车道（默认中间车道）
	StartPosition Vec3 `yaml:"startPosition"` // 初始位置，X 会被对齐到初始车道
}

// MotionConfig 角色运动参数
type MotionConfig struct {
	LaneSwitchSpeed   float64 `yaml:"laneSwitchSpeed"`   // 换道速度（单位/秒）
	JumpHeight        float64 `yaml:"jumpHeight"`        // 跳跃高度
	JumpDuration      float64 `yaml:"jumpDuration"`      // 跳跃总时长（秒），上升与下降各占一半
	SlideDuration     float64 `yaml:"slideDuration"`     // 滑铲时长（秒）
	SlidePitchDegrees float64 `yaml:"slidePitchDegrees"` // 滑铲目标俯仰角（度）
}

// CameraConfig 跟随镜头配置
type CameraConfig struct {
	Offset Vec3 `yaml:"offset"` // 相对角色的偏移
}

// KeyBindings 键位映射，每个动作可绑定多个按键
//
// YAML 中写 ebiten 键名（如 "ArrowLeft"、"a"，不区分大小写），
// 由 ebiten.Key 的 UnmarshalText 解析；无法识别的键名会使解析失败。
type KeyBindings struct {
	LaneLeft  []ebiten.Key `yaml:"laneLeft"`
	LaneRight []ebiten.Key `yaml:"laneRight"`
	Jump      []ebiten.Key `yaml:"jump"`
	Slide     []ebiten.Key `yaml:"slide"`
}

// DefaultKeyBindings 默认键位
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		LaneLeft:  []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA},
		LaneRight: []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD},
		Jump:      []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW},
		Slide:     []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS},
	}
}

// WithDefaults 返回补全后的键位，未绑定任何按键的动作使用默认键位
func (k KeyBindings) WithDefaults() KeyBindings {
	defaults := DefaultKeyBindings()
	if len(k.LaneLeft) == 0 {
		k.LaneLeft = defaults.LaneLeft
	}
	if len(k.LaneRight) == 0 {
		k.LaneRight = defaults.LaneRight
	}
	if len(k.Jump) == 0 {
		k.Jump = defaults.Jump
	}
	if len(k.Slide) == 0 {
		k.Slide = defaults.Slide
	}
	return k
}

// DefaultRunnerConfig 返回默认配置
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Field: FieldConfig{
			Center: Vec3{},
			Size:   Vec3{X: 9, Y: 0.2, Z: 100},
		},
		Lanes: LanesConfig{
			Count:            lanes.DefaultLaneCount,
			Spacing:          0,
			LocatorTolerance: lanes.DefaultTolerance,
			CreateMarkers:    true,
			ShowGizmo:        true,
		},
		Avatar: AvatarConfig{
			StartLane:     1,
			StartPosition: Vec3{Y: 0.5},
		},
		Motion: MotionConfig{
			LaneSwitchSpeed:   5,
			JumpHeight:        2,
			JumpDuration:      0.5,
			SlideDuration:     0.5,
			SlidePitchDegrees: -80,
		},
		Camera: CameraConfig{
			Offset: Vec3{X: 0, Y: 5, Z: -10},
		},
		Keys: DefaultKeyBindings(),
	}
}

// LoadRunnerConfig 加载跑酷场景配置
//
// 参数:
//   - path: 配置文件路径（如 "data/runner.yaml"）
//
// 返回:
//   - *RunnerConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadRunnerConfig(path string) (*RunnerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read runner config: %w", err)
	}
	return ParseRunnerConfig(data)
}

// ParseRunnerConfig 从 YAML 数据解析配置
//
// 未出现在 YAML 中的字段保留默认值。
func ParseRunnerConfig(data []byte) (*RunnerConfig, error) {
	config := DefaultRunnerConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse runner config: %w", err)
	}

	config.Normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}
	return config, nil
}

// Normalize 修正可以自动纠正的配置项
//
//   - 车道数量固定为 3，其他值会被改写并记录警告
//   - 容差 <= 0 时使用默认容差
//   - 未配置的键位使用默认键位
func (c *RunnerConfig) Normalize() {
	if c.Lanes.Count != lanes.DefaultLaneCount {
		log.Printf("[Config] Warning: lane count %d is not supported, forcing %d", c.Lanes.Count, lanes.DefaultLaneCount)
		c.Lanes.Count = lanes.DefaultLaneCount
	}
	if c.Lanes.LocatorTolerance <= 0 {
		c.Lanes.LocatorTolerance = lanes.DefaultTolerance
	}

	c.Keys = c.Keys.WithDefaults()
}

// Validate 验证配置有效性
//
// 检查配置值是否在合理范围内：
//   - 地面宽度 > 0 且车道宽度 > 0
//   - 初始车道在 [0, 车道数-1]
//   - 运动参数为正数（俯仰角除外）
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *RunnerConfig) Validate() error {
	if c.Field.Size.X <= 0 {
		return fmt.Errorf("field width must be > 0, got %.3f", c.Field.Size.X)
	}
	if c.Lanes.Spacing < 0 {
		return fmt.Errorf("lane spacing must be >= 0, got %.3f", c.Lanes.Spacing)
	}

	laneCount := float64(c.Lanes.Count)
	if laneWidth := (c.Field.Size.X - c.Lanes.Spacing*(laneCount-1)) / laneCount; laneWidth <= 0 {
		return fmt.Errorf("calculated lane width %.3f <= 0, check field width and lane spacing", laneWidth)
	}

	if c.Avatar.StartLane < 0 || c.Avatar.StartLane >= c.Lanes.Count {
		return fmt.Errorf("start lane %d out of range [0, %d]", c.Avatar.StartLane, c.Lanes.Count-1)
	}

	positives := []struct {
		name  string
		value float64
	}{
		{"laneSwitchSpeed", c.Motion.LaneSwitchSpeed},
		{"jumpHeight", c.Motion.JumpHeight},
		{"jumpDuration", c.Motion.JumpDuration},
		{"slideDuration", c.Motion.SlideDuration},
	}
	for _, p := range positives {
		if p.value <= 0 || math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("motion %s must be a positive number, got %v", p.name, p.value)
		}
	}

	if !c.Field.HasLateralAxis() {
		return fmt.Errorf("field yawDegrees %.1f turns the lateral axis perpendicular to X, lanes cannot be laid out", c.Field.YawDegrees)
	}

	if c.FallbackBounds != nil {
		if c.FallbackBounds.Size.X <= 0 {
			return fmt.Errorf("fallback bounds width must be > 0, got %.3f", c.FallbackBounds.Size.X)
		}
		if !c.FallbackBounds.HasLateralAxis() {
			return fmt.Errorf("fallback bounds yawDegrees %.1f turns the lateral axis perpendicular to X", c.FallbackBounds.YawDegrees)
		}
	}
	return nil
}
