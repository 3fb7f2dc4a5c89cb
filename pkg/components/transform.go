package components

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// TransformComponent 实体在世界中的位置和朝向
type TransformComponent struct {
	Position r3.Vec      // 世界坐标
	Rotation quat.Number // 单位四元数
}
