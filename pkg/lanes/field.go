// Package lanes 负责把地面划分为平行车道，并提供位置到车道的查询
//
// 数据流：GeometryProvider → Field → ComputeLanes → *LaneTable → {Locate, 运动系统}
//
// LaneTable 一经构建便不可变；Partitioner 通过指针原子替换发布新表，
// 读取方要么看到旧的完整表，要么看到新的完整表。
package lanes

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/geom"
)

// Field 地面范围
//
// Size.X 为横向宽度，Size.Y 为厚度，Size.Z 为纵深。
// 横向、前进、竖直三个基向量由 Orientation 推导。
type Field struct {
	Center      r3.Vec
	Size        r3.Vec
	Orientation quat.Number
}

// NewField 创建一个朝向为单位朝向的地面
func NewField(center, size r3.Vec) Field {
	return Field{Center: center, Size: size, Orientation: geom.Identity}
}

// orientation 返回有效朝向；零值四元数视为单位朝向
func (f Field) orientation() quat.Number {
	if f.Orientation == (quat.Number{}) {
		return geom.Identity
	}
	return geom.Normalize(f.Orientation)
}

// Right 横向基向量
func (f Field) Right() r3.Vec {
	return geom.Rotate(f.orientation(), geom.AxisX)
}

// Up 竖直基向量
func (f Field) Up() r3.Vec {
	return geom.Rotate(f.orientation(), geom.AxisY)
}

// Forward 前进方向基向量
func (f Field) Forward() r3.Vec {
	return geom.Rotate(f.orientation(), geom.AxisZ)
}

// GeometryProvider 地面几何来源
//
// Bounds 返回 false 表示当前无法提供几何（例如地面尚未加载）。
type GeometryProvider interface {
	Bounds() (Field, bool)
}

// StaticGeometry 固定不变的地面几何
type StaticGeometry struct {
	Field Field
}

// Bounds 实现 GeometryProvider
func (g StaticGeometry) Bounds() (Field, bool) {
	return g.Field, true
}

// NamedGeometry 带名称的几何节点，用于宿主按名称查找地面
type NamedGeometry interface {
	GeometryProvider
	Name() string
}

// groundNames 可识别的地面节点名称
var groundNames = []string{"ground", "Ground"}

// GroundByName 在节点列表中查找名为 "ground"/"Ground" 的地面
//
// 找不到时返回 nil。
func GroundByName(nodes []NamedGeometry) GeometryProvider {
	for _, name := range groundNames {
		for _, node := range nodes {
			if node != nil && node.Name() == name {
				return node
			}
		}
	}
	return nil
}
