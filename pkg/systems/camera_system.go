package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/decker502/runner/pkg/components"
	"github.com/decker502/runner/pkg/ecs"
)

// CameraSystem 跟随镜头系统
//
// 镜头位置 = 目标位置 + 偏移，注视点 = 目标位置。目标实体不存在时镜头保持不动。
type CameraSystem struct {
	entityManager *ecs.EntityManager
	cameraEntity  ecs.EntityID // 镜头实体ID
}

// NewCameraSystem 创建镜头系统，并创建跟随 target 的镜头实体
func NewCameraSystem(em *ecs.EntityManager, target ecs.EntityID, offset r3.Vec) *CameraSystem {
	cs := &CameraSystem{
		entityManager: em,
	}

	cs.cameraEntity = em.CreateEntity()
	ecs.AddComponent(em, cs.cameraEntity, &components.CameraComponent{
		Target: target,
		Offset: offset,
	})

	// 立即对齐一次，避免第一帧镜头停在原点
	cs.Update(0)
	return cs
}

// CameraEntity 返回镜头实体ID
func (cs *CameraSystem) CameraEntity() ecs.EntityID {
	return cs.cameraEntity
}

// Camera 返回镜头组件
func (cs *CameraSystem) Camera() (*components.CameraComponent, bool) {
	return ecs.GetComponent[*components.CameraComponent](cs.entityManager, cs.cameraEntity)
}

// Update 更新所有镜头
func (cs *CameraSystem) Update(dt float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.CameraComponent](cs.entityManager) {
		camera, _ := ecs.GetComponent[*components.CameraComponent](cs.entityManager, id)

		target, ok := ecs.GetComponent[*components.TransformComponent](cs.entityManager, camera.Target)
		if !ok {
			continue
		}

		camera.Position = r3.Add(target.Position, camera.Offset)
		camera.LookAt = target.Position
	}
}
