package components

// InputEdge 单帧的边沿触发输入
//
// 每个字段只在按键从松开变为按下的那一帧为 true。
type InputEdge struct {
	LaneLeft  bool
	LaneRight bool
	Jump      bool
	Slide     bool
}

// Any 是否有任意输入
func (in InputEdge) Any() bool {
	return in.LaneLeft || in.LaneRight || in.Jump || in.Slide
}
