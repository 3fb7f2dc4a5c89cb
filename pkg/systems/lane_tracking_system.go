package systems

import (
	"log"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/ecs"
	"github.com/decker502/runner/pkg/lanes"
)

// LaneTrackingSystem 按实体位置查询其实际所在车道
//
// 换道途中位置不在任何车道容差内，此时记录为 lanes.NotFound。
type LaneTrackingSystem struct {
	entityManager *ecs.EntityManager
	lanes         LaneSource
}

// NewLaneTrackingSystem 创建车道追踪系统
func NewLaneTrackingSystem(em *ecs.EntityManager, source LaneSource) *LaneTrackingSystem {
	return &LaneTrackingSystem{
		entityManager: em,
		lanes:         source,
	}
}

// Update 更新所有被追踪实体的实际车道
func (s *LaneTrackingSystem) Update(deltaTime float64) {
	var table *lanes.LaneTable
	if s.lanes != nil {
		table = s.lanes.Table()
	}

	entities := ecs.GetEntitiesWith2[
		*components.TransformComponent,
		*components.LaneTrackingComponent,
	](s.entityManager)

	for _, entityID := range entities {
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, entityID)
		tracking, _ := ecs.GetComponent[*components.LaneTrackingComponent](s.entityManager, entityID)

		tolerance := tracking.Tolerance
		if tolerance <= 0 {
			tolerance = lanes.DefaultTolerance
		}

		lane := lanes.Locate(transform.Position, table, tolerance)
		if lane != tracking.ObservedLane {
			if lane == lanes.NotFound {
				log.Printf("[LaneTrackingSystem] Entity %d left lane %d", entityID, tracking.ObservedLane)
			} else {
				log.Printf("[LaneTrackingSystem] Entity %d entered lane %d", entityID, lane)
			}
			tracking.ObservedLane = lane
		}
	}
}
