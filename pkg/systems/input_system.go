package systems

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/config"
)

// ControlState 单帧的原始按键状态（按住即为 true）
type ControlState struct {
	LaneLeft  bool
	LaneRight bool
	Jump      bool
	Slide     bool
}

// ControlSource 原始按键状态来源
type ControlSource interface {
	Poll() ControlState
}

// EdgeDetector 把逐帧的按住状态转换为边沿触发输入
//
// 只在某个控制从松开变为按下的那一帧输出 true。
type EdgeDetector struct {
	previous ControlState
}

// Sample 用本帧状态与上一帧比较，返回边沿输入并记住本帧状态
func (d *EdgeDetector) Sample(current ControlState) components.InputEdge {
	edge := components.InputEdge{
		LaneLeft:  current.LaneLeft && !d.previous.LaneLeft,
		LaneRight: current.LaneRight && !d.previous.LaneRight,
		Jump:      current.Jump && !d.previous.Jump,
		Slide:     current.Slide && !d.previous.Slide,
	}
	d.previous = current
	return edge
}

// Reset 清除上一帧状态（下一帧仍按住的键会再次触发）
func (d *EdgeDetector) Reset() {
	d.previous = ControlState{}
}

// InputSystem 每帧采样一次控制状态并输出边沿输入
type InputSystem struct {
	source   ControlSource
	detector EdgeDetector
}

// NewInputSystem 创建输入系统
func NewInputSystem(source ControlSource) *InputSystem {
	return &InputSystem{source: source}
}

// Update 采样本帧输入；没有输入源时返回空输入
func (s *InputSystem) Update() components.InputEdge {
	if s.source == nil {
		return components.InputEdge{}
	}
	return s.detector.Sample(s.source.Poll())
}

// Reset 清除边沿检测状态
func (s *InputSystem) Reset() {
	s.detector.Reset()
}

// KeyboardSource 基于 ebiten 键盘的控制来源
type KeyboardSource struct {
	laneLeft  []ebiten.Key
	laneRight []ebiten.Key
	jump      []ebiten.Key
	slide     []ebiten.Key
}

// NewKeyboardSource 根据键位配置创建键盘控制来源，未绑定的动作使用默认键位
func NewKeyboardSource(bindings config.KeyBindings) *KeyboardSource {
	bindings = bindings.WithDefaults()
	return &KeyboardSource{
		laneLeft:  bindings.LaneLeft,
		laneRight: bindings.LaneRight,
		jump:      bindings.Jump,
		slide:     bindings.Slide,
	}
}

// Poll 实现 ControlSource
func (ks *KeyboardSource) Poll() ControlState {
	return ControlState{
		LaneLeft:  anyKeyPressed(ks.laneLeft),
		LaneRight: anyKeyPressed(ks.laneRight),
		Jump:      anyKeyPressed(ks.jump),
		Slide:     anyKeyPressed(ks.slide),
	}
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
