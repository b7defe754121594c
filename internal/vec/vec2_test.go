package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_Distance(t *testing.T) {
	a := New(100, 100)
	b := New(200, 200)

	assert.InDelta(t, 141.421356, a.Dist(b), 1e-5, "Расстояние по диагонали")
	assert.Equal(t, 20000.0, a.DistSq(b))
	assert.True(t, a.Within(a, 0), "Точка лежит в круге нулевого радиуса вокруг себя")
	assert.False(t, a.Within(b, 50))
	assert.True(t, a.Within(New(150, 100), 50), "Граница круга включается")
}

func TestVec2_Normalized(t *testing.T) {
	assert.Equal(t, Vec2{}, Vec2{}.Normalized(), "Нулевой вектор остаётся нулевым")

	n := New(3, 4).Normalized()
	assert.InDelta(t, 1.0, n.Len(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
}

func TestVec2_FromAngle(t *testing.T) {
	v := FromAngle(math.Pi/2, 8)
	assert.InDelta(t, 0.0, v.X, 1e-12)
	assert.InDelta(t, 8.0, v.Y, 1e-12)
	assert.Equal(t, New(4, 6), New(1, 2).Add(New(3, 4)))
	assert.Equal(t, New(-2, -2), New(1, 2).Sub(New(3, 4)))
	assert.Equal(t, New(2, 4), New(1, 2).Scale(2))
}
