package vec

import "math"

// Vec2 представляет точку или вектор на плоскости мира
type Vec2 struct {
	X, Y float64
}

// New создаёт вектор из компонент
func New(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle возвращает вектор длины length, повёрнутый на angle радиан
func FromAngle(angle, length float64) Vec2 {
	return Vec2{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Add складывает два вектора
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale умножает вектор на скаляр
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Len возвращает длину вектора
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized возвращает единичный вектор; нулевой вектор остаётся нулевым
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// DistSq возвращает квадрат евклидова расстояния.
// Все проверки радиуса сравнивают квадраты, чтобы не брать корень.
func (v Vec2) DistSq(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Dist возвращает евклидово расстояние
func (v Vec2) Dist(o Vec2) float64 {
	return math.Sqrt(v.DistSq(o))
}

// Within сообщает, лежит ли o в замкнутом круге радиуса r вокруг v
func (v Vec2) Within(o Vec2, r float64) bool {
	return v.DistSq(o) <= r*r
}
