package components

// LaneRunnerComponent 角色的横向换道状态
//
// CurrentLane 由换道输入驱动，TargetX 每帧从车道表重新读取，
// 角色 X 坐标以 SwitchSpeed 匀速逼近 TargetX。
type LaneRunnerComponent struct {
	CurrentLane int     // 当前车道索引 [0, 车道数-1]
	TargetX     float64 // 当前车道中心的横向坐标
	SwitchSpeed float64 // 换道速度（单位/秒）
}
