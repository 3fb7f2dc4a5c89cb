package components

import "gonum.org/v1/gonum/num/quat"

// SlideComponent 滑铲子状态机
//
// 滑铲期间朝向从 StartRotation 球面插值到 TargetRotation；
// 结束时朝向被重置为单位朝向（而不是 StartRotation）。
type SlideComponent struct {
	Active         bool
	Elapsed        float64     // 已经过时间（秒）
	Duration       float64     // 滑铲时长（秒）
	PitchDegrees   float64     // 目标俯仰角（度）
	StartRotation  quat.Number // 触发时捕获的朝向
	TargetRotation quat.Number
}
