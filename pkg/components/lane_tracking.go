package components

// LaneTrackingComponent 实体当前实际所在的车道
//
// 与 LaneRunnerComponent.CurrentLane（目标车道）不同，这里记录的是按位置查询到的车道；
// 换道途中为 -1。
type LaneTrackingComponent struct {
	ObservedLane int
	Tolerance    float64
}
