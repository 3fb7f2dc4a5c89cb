// Package geom 提供运动插值相关的几何工具函数
//
// 向量统一使用 gonum 的 r3.Vec，朝向统一使用 quat.Number（单位四元数）。
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// 常用坐标轴
var (
	AxisX = r3.Vec{X: 1} // 横向（左右）
	AxisY = r3.Vec{Y: 1} // 竖直
	AxisZ = r3.Vec{Z: 1} // 前进方向（纵深）
)

// Identity 单位朝向（无旋转）
var Identity = quat.Number{Real: 1}

// MoveTowards 以不超过 maxDelta 的步长把 current 推向 target
//
// 结果永远不会越过 target；剩余距离不大于步长时直接返回 target。
// maxDelta 为负值时按 0 处理。
func MoveTowards(current, target, maxDelta float64) float64 {
	if maxDelta < 0 {
		maxDelta = 0
	}
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}

// Approximately 判断两个浮点数是否近似相等
//
// 容差取相对误差 1e-6 与绝对误差 1e-9 中较大者，用于吸收逐帧累加的舍入误差。
func Approximately(a, b float64) bool {
	tolerance := math.Max(1e-6*math.Max(math.Abs(a), math.Abs(b)), 1e-9)
	return math.Abs(b-a) < tolerance
}

// Clamp01 将 t 限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ClampInt 将整数限制在 [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
