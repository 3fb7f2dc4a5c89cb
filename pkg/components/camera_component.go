package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/ecs"
)

// CameraComponent 跟随镜头
//
// 每帧镜头位置 = 目标位置 + Offset，并始终看向目标。
type CameraComponent struct {
	// Target 跟随的实体
	Target ecs.EntityID

	// Offset 相对目标的偏移
	Offset r3.Vec

	// Position 镜头世界坐标
	Position r3.Vec

	// LookAt 镜头注视点
	LookAt r3.Vec
}
