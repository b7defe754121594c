package collision

import (
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/vec"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Collidable снимок позиции врага на момент перестроения индекса.
// Target может устареть: враг мог исчезнуть после снимка.
type Collidable struct {
	Pos    vec.Vec2
	Target entity.Handle
}

// HostileSource перечисляет живых врагов
type HostileSource interface {
	EachHostile(fn func(h entity.Handle, pos vec.Vec2))
}

// Snapshot собирает по одному Collidable на каждого живого врага
func Snapshot(src HostileSource) []Collidable {
	return SnapshotInto(src, nil)
}

// SnapshotInto как Snapshot, но переиспользует ёмкость buf.
// buf обрезается до нуля перед заполнением.
func SnapshotInto(src HostileSource, buf []Collidable) []Collidable {
	buf = buf[:0]
	src.EachHostile(func(h entity.Handle, pos vec.Vec2) {
		buf = append(buf, Collidable{Pos: pos, Target: h})
	})
	return buf
}

// Compare реализует kdtree.Comparable: знаковое расстояние до плоскости d
func (c Collidable) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	q := o.(Collidable)
	if d == 0 {
		return c.Pos.X - q.Pos.X
	}
	return c.Pos.Y - q.Pos.Y
}

// Dims реализует kdtree.Comparable
func (c Collidable) Dims() int { return 2 }

// Distance реализует kdtree.Comparable. Как и в kdtree.Point, это квадрат расстояния.
func (c Collidable) Distance(o kdtree.Comparable) float64 {
	return c.Pos.DistSq(o.(Collidable).Pos)
}
