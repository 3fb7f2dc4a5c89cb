package components

// JumpPhase 跳跃阶段
type JumpPhase int

const (
	// JumpIdle 未在跳跃
	JumpIdle JumpPhase = iota
	// JumpAscending 上升阶段
	JumpAscending
	// JumpDescending 下降阶段
	JumpDescending
)

// String 返回阶段名称（用于日志）
func (p JumpPhase) String() string {
	switch p {
	case JumpIdle:
		return "Idle"
	case JumpAscending:
		return "Ascending"
	case JumpDescending:
		return "Descending"
	default:
		return "Unknown"
	}
}

// JumpComponent 跳跃子状态机
//
// 状态流转：Idle → Ascending → Descending → Idle，一旦开始不可取消。
type JumpComponent struct {
	Phase    JumpPhase
	StartY   float64 // 起跳时的 Y 坐标，落地时精确回到该值
	TargetY  float64 // 顶点 Y 坐标
	Timer    float64 // 当前阶段已经过的时间（秒）
	Height   float64 // 跳跃高度
	Duration float64 // 跳跃总时长（秒）
}

// IsJumping 是否处于跳跃中
func (j *JumpComponent) IsJumping() bool {
	return j.Phase != JumpIdle
}

// VerticalSpeed 竖直速度 = 高度 / 半程时长
func (j *JumpComponent) VerticalSpeed() float64 {
	return j.Height / (j.Duration / 2)
}
