package lanes

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/geom"
)

// DefaultLaneCount 车道数量固定为 3
const DefaultLaneCount = 3

// NotFound 查询不到车道时返回的索引
const NotFound = -1

// MinLateralComponent 地面横向基向量 X 分量绝对值的下限
const MinLateralComponent = 1e-6

var (
	// ErrConfiguration 车道参数无效（计算出的车道宽度 <= 0 等）
	ErrConfiguration = errors.New("invalid lane configuration")

	// ErrMissingReference 没有可用的地面几何
	ErrMissingReference = errors.New("no ground geometry available")
)

// LaneTable 车道中心表
//
// 构建后不可变，所有字段只通过访问器读取。
type LaneTable struct {
	centers     []r3.Vec
	laneWidth   float64
	laneSpacing float64
	fieldWidth  float64
	fieldDepth  float64
	orientation quat.Number
}

// Count 车道数量
func (t *LaneTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.centers)
}

// Center 返回第 index 条车道的中心（世界坐标）
//
// 索引越界或表为空时返回 false。
func (t *LaneTable) Center(index int) (r3.Vec, bool) {
	if t == nil || index < 0 || index >= len(t.centers) {
		return r3.Vec{}, false
	}
	return t.centers[index], true
}

// Centers 返回中心坐标的副本
func (t *LaneTable) Centers() []r3.Vec {
	if t == nil {
		return nil
	}
	out := make([]r3.Vec, len(t.centers))
	copy(out, t.centers)
	return out
}

// LaneWidth 单条车道宽度，表为空时返回 0
func (t *LaneTable) LaneWidth() float64 {
	if t == nil {
		return 0
	}
	return t.laneWidth
}

// LaneSpacing 车道间距
func (t *LaneTable) LaneSpacing() float64 {
	if t == nil {
		return 0
	}
	return t.laneSpacing
}

// FieldWidth 构建时使用的地面宽度
func (t *LaneTable) FieldWidth() float64 {
	if t == nil {
		return 0
	}
	return t.fieldWidth
}

// FieldDepth 构建时使用的地面纵深
func (t *LaneTable) FieldDepth() float64 {
	if t == nil {
		return 0
	}
	return t.fieldDepth
}

// Orientation 构建时地面的朝向，表为空时返回单位四元数
func (t *LaneTable) Orientation() quat.Number {
	if t == nil {
		return geom.Identity
	}
	return t.orientation
}

// ComputeLanes 根据地面范围计算车道中心表
//
// 计算规则：
//   - usableWidth = 地面宽度 - laneSpacing*(laneCount-1)
//   - laneWidth = usableWidth / laneCount，必须 > 0
//   - 各车道沿地面横向基向量对称分布于地面中心两侧，相邻中心相距 laneWidth+laneSpacing
//   - 车道索引沿 field.Right() 递增；地面反向（Right().X < 0）时中心 X 随索引递减
//   - 横向基向量的 X 分量接近 0（绕竖直轴转 90°）时无法换道，返回 ErrConfiguration
//   - 所有车道中心的 Z 坐标固定为地面中心的 Z（车道沿地面纵深中线排布，不逐条倾斜）
//
// 纯函数：相同输入永远得到逐位相同的结果。
//
// 参数:
//   - field: 地面范围
//   - laneCount: 车道数量（>= 1）
//   - laneSpacing: 相邻车道之间的间距（>= 0）
//
// 返回:
//   - *LaneTable: 完整的新车道表
//   - error: 参数无效时返回包装了 ErrConfiguration 的错误
func ComputeLanes(field Field, laneCount int, laneSpacing float64) (*LaneTable, error) {
	if laneCount < 1 {
		return nil, fmt.Errorf("%w: lane count %d < 1", ErrConfiguration, laneCount)
	}
	if !isFinite(field.Size.X) || !isFinite(laneSpacing) {
		return nil, fmt.Errorf("%w: non-finite field width %v or spacing %v", ErrConfiguration, field.Size.X, laneSpacing)
	}
	if laneSpacing < 0 {
		return nil, fmt.Errorf("%w: lane spacing %.3f < 0", ErrConfiguration, laneSpacing)
	}

	fieldWidth := field.Size.X
	totalSpacing := laneSpacing * float64(laneCount-1)
	usableWidth := fieldWidth - totalSpacing
	laneWidth := usableWidth / float64(laneCount)

	if laneWidth <= 0 {
		return nil, fmt.Errorf("%w: calculated lane width %.3f <= 0 (field width %.3f, spacing %.3f)",
			ErrConfiguration, laneWidth, fieldWidth, laneSpacing)
	}

	right := field.Right()
	if math.Abs(right.X) <= MinLateralComponent {
		// 角色只沿 X 换道，横向基向量与 X 轴垂直时车道中心全部重合
		return nil, fmt.Errorf("%w: field right axis %v has no lateral (X) component", ErrConfiguration, right)
	}
	firstOffset := -fieldWidth*0.5 + laneWidth*0.5

	centers := make([]r3.Vec, laneCount)
	for i := 0; i < laneCount; i++ {
		offset := firstOffset + float64(i)*(laneWidth+laneSpacing)
		center := r3.Add(field.Center, r3.Scale(offset, right))
		center.Z = field.Center.Z
		centers[i] = center
	}

	return &LaneTable{
		centers:     centers,
		laneWidth:   laneWidth,
		laneSpacing: laneSpacing,
		fieldWidth:  fieldWidth,
		fieldDepth:  field.Size.Z,
		orientation: field.orientation(),
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
