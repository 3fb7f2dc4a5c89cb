package lanes

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance 位置与车道中心的默认横向容差
const DefaultTolerance = 0.05

// Locate 返回 position 所在车道的索引
//
// 按索引顺序扫描，返回第一个横向（X）距离严格小于 tolerance 的车道；
// 都不满足或表为空时返回 NotFound。
func Locate(position r3.Vec, table *LaneTable, tolerance float64) int {
	for i := 0; i < table.Count(); i++ {
		center, _ := table.Center(i)
		if math.Abs(position.X-center.X) < tolerance {
			return i
		}
	}
	return NotFound
}

// ProjectToLane 把 position 投影到第 index 条车道
//
// 横向与纵深坐标取车道中心，竖直坐标保留 position 自身的值。
// 索引无效时返回 false。
func ProjectToLane(position r3.Vec, table *LaneTable, index int) (r3.Vec, bool) {
	center, ok := table.Center(index)
	if !ok {
		return position, false
	}
	return r3.Vec{X: center.X, Y: position.Y, Z: center.Z}, true
}
