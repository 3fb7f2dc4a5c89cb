package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// slerpLinearThreshold 两个朝向夹角足够小时退化为归一化线性插值
const slerpLinearThreshold = 0.9995

// AxisAngle 构造绕 axis 旋转 degrees 度的单位四元数
func AxisAngle(axis r3.Vec, degrees float64) quat.Number {
	return quat.Number(r3.NewRotation(degrees*math.Pi/180, axis))
}

// Pitch 构造绕横向轴（X）旋转的朝向，正值抬头、负值前倾
func Pitch(degrees float64) quat.Number {
	return AxisAngle(AxisX, degrees)
}

// PitchDegrees 读取纯 X 轴旋转的角度（度）
//
// 仅对 Pitch 构造出的朝向（或其插值结果）有意义。
func PitchDegrees(q quat.Number) float64 {
	return 2 * math.Atan2(q.Imag, q.Real) * 180 / math.Pi
}

// Rotate 用朝向 q 旋转向量 v
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Normalize 返回单位化后的四元数；零四元数返回 Identity
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Slerp 在两个朝向之间做球面线性插值
//
// t 会先被限制在 [0, 1]；t == 0 时精确返回 a。
// 总是沿最短弧插值（必要时翻转 b 的符号）。
func Slerp(a, b quat.Number, t float64) quat.Number {
	t = Clamp01(t)
	if t == 0 {
		return a
	}

	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}

	if dot > slerpLinearThreshold {
		// 夹角接近 0，sin(theta) 过小，改用 nlerp
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}

// AngleBetween 返回两个单位朝向之间的夹角（度）
func AngleBetween(a, b quat.Number) float64 {
	dot := math.Abs(a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag)
	if dot > 1 {
		dot = 1
	}
	return 2 * math.Acos(dot) * 180 / math.Pi
}
