package app

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/geom"
	"github.com/decker502/runner/pkg/lanes"
)

// TestMarkerLayer 测试标记图层只保留最近一次发布
func TestMarkerLayer(t *testing.T) {
	layer := NewMarkerLayer()
	if len(layer.Markers()) != 0 {
		t.Fatalf("Expected empty layer, got %d markers", len(layer.Markers()))
	}

	layer.PublishLaneMarkers([]lanes.LaneMarker{
		{Index: 0, Position: r3.Vec{X: -3}, Rotation: geom.Identity},
		{Index: 1, Position: r3.Vec{}, Rotation: geom.Identity},
		{Index: 2, Position: r3.Vec{X: 3}, Rotation: geom.Identity},
	})
	layer.PublishLaneMarkers([]lanes.LaneMarker{
		{Index: 0, Position: r3.Vec{X: -4}, Rotation: geom.Identity},
	})

	markers := layer.Markers()
	if len(markers) != 1 {
		t.Fatalf("Expected 1 marker after republish, got %d", len(markers))
	}
	if markers[0].Position.X != -4 {
		t.Errorf("Expected latest marker at X=-4, got %v", markers[0].Position.X)
	}
}

// TestWorldToScreen 测试俯视投影
func TestWorldToScreen(t *testing.T) {
	view := NewTopDownView(640, 800)

	tests := []struct {
		name   string
		p      r3.Vec
		focusZ float64
		wantX  float64
		wantY  float64
	}{
		{"原点", r3.Vec{}, 0, 320, 600},
		{"左侧车道", r3.Vec{X: -3}, 0, 320 - 3*48, 600},
		{"前方一个单位", r3.Vec{Z: 1}, 0, 320, 600 - 48},
		{"跟随镜头", r3.Vec{Z: 11}, 10, 320, 600 - 48},
		{"高度不影响投影", r3.Vec{Y: 5}, 0, 320, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := view.WorldToScreen(tt.p, tt.focusZ)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.wantX, tt.wantY, x, y)
			}
		})
	}
}
