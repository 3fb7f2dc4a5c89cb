package lanes

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/geom"
)

// tableComparer 比较两张车道表的全部字段（逐位相等）
var tableComparer = cmp.AllowUnexported(LaneTable{})

func TestComputeLanesCoverage(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		spacing float64
	}{
		{"无间距", 9, 0},
		{"小间距", 9, 0.5},
		{"非整数宽度", 7.3, 0.25},
		{"窄地面", 0.9, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := NewField(r3.Vec{X: 1, Y: 0.5, Z: 10}, r3.Vec{X: tt.width, Y: 0.2, Z: 100})
			table, err := ComputeLanes(field, DefaultLaneCount, tt.spacing)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if table.Count() != 3 {
				t.Fatalf("Expected 3 lanes, got %d", table.Count())
			}
			if table.LaneWidth() <= 0 {
				t.Errorf("Expected positive lane width, got %v", table.LaneWidth())
			}

			covered := table.LaneWidth()*3 + tt.spacing*2
			if math.Abs(covered-tt.width) > 1e-9 {
				t.Errorf("Expected lanes to cover %v, got %v", tt.width, covered)
			}
		})
	}
}

func TestComputeLanesMonotonicAndSymmetric(t *testing.T) {
	center := r3.Vec{X: 2, Y: 1, Z: -4}
	field := NewField(center, r3.Vec{X: 9, Y: 0.2, Z: 50})

	table, err := ComputeLanes(field, 3, 0.6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	centers := table.Centers()
	for i := 1; i < len(centers); i++ {
		if centers[i].X <= centers[i-1].X {
			t.Errorf("Lane %d X=%v is not greater than lane %d X=%v", i, centers[i].X, i-1, centers[i-1].X)
		}
	}

	// 左右车道关于地面中心对称
	left := centers[0].X - center.X
	right := centers[2].X - center.X
	if math.Abs(left+right) > 1e-9 {
		t.Errorf("Expected symmetric offsets, got %v and %v", left, right)
	}
	if math.Abs(centers[1].X-center.X) > 1e-9 {
		t.Errorf("Expected middle lane on field center, got %v", centers[1].X)
	}

	// 相邻中心相距 laneWidth + spacing
	step := table.LaneWidth() + table.LaneSpacing()
	if math.Abs((centers[1].X-centers[0].X)-step) > 1e-9 {
		t.Errorf("Expected center step %v, got %v", step, centers[1].X-centers[0].X)
	}
}

func TestComputeLanesKnownLayout(t *testing.T) {
	field := NewField(r3.Vec{}, r3.Vec{X: 9, Y: 1, Z: 30})
	table, err := ComputeLanes(field, 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []r3.Vec{{X: -3}, {X: 0}, {X: 3}}
	if diff := cmp.Diff(want, table.Centers()); diff != "" {
		t.Errorf("Lane centers mismatch (-want +got):\n%s", diff)
	}
	if table.LaneWidth() != 3 {
		t.Errorf("Expected lane width 3, got %v", table.LaneWidth())
	}
	if table.FieldDepth() != 30 {
		t.Errorf("Expected field depth 30, got %v", table.FieldDepth())
	}
}

func TestComputeLanesDepthMidline(t *testing.T) {
	// 轻微偏航的地面：横向基向量带有 Z 分量，但车道中心仍固定在地面中线上
	field := Field{
		Center:      r3.Vec{X: 0, Y: 0, Z: 12},
		Size:        r3.Vec{X: 9, Y: 0.2, Z: 40},
		Orientation: geom.AxisAngle(geom.AxisY, 20),
	}

	table, err := ComputeLanes(field, 3, 0.3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, c := range table.Centers() {
		if c.Z != 12 {
			t.Errorf("Lane %d: expected Z=12, got %v", i, c.Z)
		}
	}
}

func TestComputeLanesIdempotent(t *testing.T) {
	field := Field{
		Center:      r3.Vec{X: 0.1, Y: 0.2, Z: 0.3},
		Size:        r3.Vec{X: 7.7, Y: 0.2, Z: 33},
		Orientation: geom.AxisAngle(geom.AxisY, 5),
	}

	first, err := ComputeLanes(field, 3, 0.35)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := ComputeLanes(field, 3, 0.35)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first == second {
		t.Fatal("Expected a fresh table per computation")
	}
	if diff := cmp.Diff(first, second, tableComparer); diff != "" {
		t.Errorf("Tables differ between identical computations (-first +second):\n%s", diff)
	}
}

func TestComputeLanesConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		count   int
		spacing float64
	}{
		{"间距吃掉全部宽度", NewField(r3.Vec{}, r3.Vec{X: 2}), 3, 1},
		{"零宽度地面", NewField(r3.Vec{}, r3.Vec{}), 3, 0},
		{"负宽度地面", NewField(r3.Vec{}, r3.Vec{X: -4}), 3, 0},
		{"车道数为零", NewField(r3.Vec{}, r3.Vec{X: 9}), 0, 0},
		{"负间距", NewField(r3.Vec{}, r3.Vec{X: 9}), 3, -0.5},
		{"NaN 宽度", NewField(r3.Vec{}, r3.Vec{X: math.NaN()}), 3, 0},
		{"横向轴垂直于 X", Field{Size: r3.Vec{X: 9}, Orientation: geom.AxisAngle(geom.AxisY, 90)}, 3, 0},
		{"横向轴垂直于 X（负向）", Field{Size: r3.Vec{X: 9}, Orientation: geom.AxisAngle(geom.AxisY, -90)}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ComputeLanes(tt.field, tt.count, tt.spacing)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
			if table != nil {
				t.Errorf("Expected nil table on error, got %+v", table)
			}
		})
	}
}

func TestComputeLanesReversedField(t *testing.T) {
	// 绕竖直轴转 180°：车道仍沿 field.Right() 依次排布，中心 X 随索引递减
	field := Field{
		Center:      r3.Vec{X: 1, Y: 0.5, Z: 7},
		Size:        r3.Vec{X: 9, Y: 0.2, Z: 40},
		Orientation: geom.AxisAngle(geom.AxisY, 180),
	}

	table, err := ComputeLanes(field, 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error for reversed field: %v", err)
	}

	wantX := []float64{4, 1, -2}
	for i, want := range wantX {
		center, _ := table.Center(i)
		if math.Abs(center.X-want) > 1e-9 {
			t.Errorf("Lane %d: expected X=%v, got %v", i, want, center.X)
		}
		if math.Abs(center.Y-0.5) > 1e-12 || center.Z != 7 {
			t.Errorf("Lane %d: expected Y=0.5 Z=7, got %v", i, center)
		}
	}

	// 沿横向基向量严格递增
	right := field.Right()
	centers := table.Centers()
	for i := 1; i < len(centers); i++ {
		prev := r3.Dot(r3.Sub(centers[i-1], field.Center), right)
		cur := r3.Dot(r3.Sub(centers[i], field.Center), right)
		if cur <= prev {
			t.Errorf("Lane %d projection %v is not greater than lane %d projection %v", i, cur, i-1, prev)
		}
	}

	// 定位依旧按 X 距离工作
	if got := Locate(r3.Vec{X: 4.01}, table, DefaultTolerance); got != 0 {
		t.Errorf("Expected Locate to find lane 0 at X=4.01, got %d", got)
	}
}

func TestZeroOrientationTreatedAsIdentity(t *testing.T) {
	field := Field{Center: r3.Vec{}, Size: r3.Vec{X: 6, Z: 10}}
	table, err := ComputeLanes(field, 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if table.Orientation() != (quat.Number{Real: 1}) {
		t.Errorf("Expected identity orientation, got %v", table.Orientation())
	}
}

func TestLaneTableCenterOutOfRange(t *testing.T) {
	table, err := ComputeLanes(NewField(r3.Vec{}, r3.Vec{X: 9}), 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, index := range []int{-1, 3, 100} {
		if _, ok := table.Center(index); ok {
			t.Errorf("Expected index %d to be rejected", index)
		}
	}

	var empty *LaneTable
	if empty.Count() != 0 {
		t.Errorf("Expected nil table to have 0 lanes, got %d", empty.Count())
	}
	if _, ok := empty.Center(0); ok {
		t.Error("Expected nil table lookup to fail")
	}
	if empty.Centers() != nil {
		t.Error("Expected nil table to have no centers")
	}
	if empty.LaneWidth() != 0 || empty.LaneSpacing() != 0 {
		t.Errorf("Expected nil table widths to be 0, got %v/%v", empty.LaneWidth(), empty.LaneSpacing())
	}
	if empty.FieldWidth() != 0 || empty.FieldDepth() != 0 {
		t.Errorf("Expected nil table field size to be 0, got %v/%v", empty.FieldWidth(), empty.FieldDepth())
	}
	if empty.Orientation() != geom.Identity {
		t.Errorf("Expected nil table orientation to be identity, got %v", empty.Orientation())
	}
}

func TestCentersReturnsCopy(t *testing.T) {
	table, err := ComputeLanes(NewField(r3.Vec{}, r3.Vec{X: 9}), 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	centers := table.Centers()
	centers[0].X = 999

	if c, _ := table.Center(0); c.X == 999 {
		t.Error("Mutating Centers() result must not change the table")
	}
}
