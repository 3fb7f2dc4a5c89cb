package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		target   float64
		maxDelta float64
		want     float64
	}{
		{"向右移动一步", 0, 2, 0.5, 0.5},
		{"向左移动一步", 0, -2, 0.5, -0.5},
		{"剩余距离小于步长时到达目标", 1.8, 2, 0.5, 2},
		{"剩余距离等于步长时到达目标", 1.5, 2, 0.5, 2},
		{"已在目标上", 2, 2, 0.5, 2},
		{"负步长不移动", 0, 2, -1, 0},
		{"零步长不移动", 0, 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.current, tt.target, tt.maxDelta)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMoveTowardsNeverOvershoots(t *testing.T) {
	x := -3.0
	target := 3.0
	for i := 0; i < 100; i++ {
		x = MoveTowards(x, target, 0.7)
		if x > target {
			t.Fatalf("Overshot target at step %d: %v > %v", i, x, target)
		}
	}
	if x != target {
		t.Errorf("Expected to settle exactly on %v, got %v", target, x)
	}
}

func TestApproximately(t *testing.T) {
	if !Approximately(2.0, 2.0+1e-12) {
		t.Error("Expected tiny difference to be approximately equal")
	}
	if !Approximately(0, 1e-10) {
		t.Error("Expected difference below absolute floor to be approximately equal")
	}
	if Approximately(2.0, 2.001) {
		t.Error("Expected 2.0 and 2.001 to differ")
	}
}

func TestClampHelpers(t *testing.T) {
	if Clamp01(-0.5) != 0 || Clamp01(1.5) != 1 || Clamp01(0.25) != 0.25 {
		t.Error("Clamp01 returned an unexpected value")
	}
	if ClampInt(-1, 0, 2) != 0 || ClampInt(3, 0, 2) != 2 || ClampInt(1, 0, 2) != 1 {
		t.Error("ClampInt returned an unexpected value")
	}
}

func TestPitchRoundTrip(t *testing.T) {
	for _, deg := range []float64{-80, -15, 0, 15, 45} {
		got := PitchDegrees(Pitch(deg))
		if math.Abs(got-deg) > 1e-9 {
			t.Errorf("Pitch(%v): expected %v, got %v", deg, deg, got)
		}
	}
}

func TestSlerpEndpoints(t *testing.T) {
	start := Pitch(15)
	target := Pitch(-80)

	if got := Slerp(start, target, 0); got != start {
		t.Errorf("Expected t=0 to return the start orientation exactly, got %v", got)
	}
	if got := PitchDegrees(Slerp(start, target, 1)); math.Abs(got-(-80)) > 1e-9 {
		t.Errorf("Expected t=1 pitch -80, got %v", got)
	}
	if got := PitchDegrees(Slerp(start, target, 0.5)); math.Abs(got-(-32.5)) > 1e-9 {
		t.Errorf("Expected midpoint pitch -32.5, got %v", got)
	}
	// t 超出范围时被截断
	if got := PitchDegrees(Slerp(start, target, 2)); math.Abs(got-(-80)) > 1e-9 {
		t.Errorf("Expected clamped t to stop at -80, got %v", got)
	}
}

func TestSlerpNearlyEqualOrientations(t *testing.T) {
	a := Pitch(10)
	b := Pitch(10.001)
	got := PitchDegrees(Slerp(a, b, 0.5))
	if math.Abs(got-10.0005) > 1e-6 {
		t.Errorf("Expected ~10.0005, got %v", got)
	}
}

func TestRotateRightAxisByYaw(t *testing.T) {
	right := Rotate(AxisAngle(AxisY, 90), AxisX)
	want := r3.Vec{Z: -1}
	if r3.Norm(r3.Sub(right, want)) > 1e-9 {
		t.Errorf("Expected %v, got %v", want, right)
	}
}

func TestAngleBetween(t *testing.T) {
	if got := AngleBetween(Pitch(15), Pitch(-80)); math.Abs(got-95) > 1e-9 {
		t.Errorf("Expected 95 degrees, got %v", got)
	}
	if got := AngleBetween(Identity, Identity); got != 0 {
		t.Errorf("Expected 0 degrees, got %v", got)
	}
}
