package collision

import (
	"github.com/annel0/bullethell/internal/vec"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// radiusSlack расширяет радиус поиска в дереве; точная граница проверяется после.
// Так точки ровно на окружности не теряются из-за отсечения по плоскостям.
const radiusSlack = 1 + 1e-9

// KDTree двумерное k-d дерево над снимком врагов
type KDTree struct {
	tree *kdtree.Tree
	n    int
}

// BuildKDTree строит дерево за O(n log n) по собственной копии points.
// Пустой снимок даёт валидное пустое дерево.
func BuildKDTree(points []Collidable) *KDTree {
	if len(points) == 0 {
		return &KDTree{}
	}
	own := make(collidables, len(points))
	copy(own, points)
	return &KDTree{tree: kdtree.New(own, false), n: len(own)}
}

// Len возвращает число точек
func (t *KDTree) Len() int {
	if t == nil {
		return 0
	}
	return t.n
}

// Query возвращает точки в радиусе radius вокруг p
func (t *KDTree) Query(p vec.Vec2, radius float64) []Collidable {
	return collect(t, p, radius)
}

// QueryFunc вызывает fn для каждой точки в радиусе radius вокруг p
func (t *KDTree) QueryFunc(p vec.Vec2, radius float64, fn func(Collidable)) {
	if t == nil || t.tree == nil || !(radius > 0) {
		return
	}
	r2 := radius * radius
	keep := kdtree.NewDistKeeper(r2 * radiusSlack)
	t.tree.NearestSet(keep, Collidable{Pos: p})
	for _, cd := range keep.Heap {
		c, ok := cd.Comparable.(Collidable)
		if !ok {
			continue // сторожевой элемент DistKeeper
		}
		if p.DistSq(c.Pos) <= r2 {
			fn(c)
		}
	}
}

// collidables реализует kdtree.Interface
type collidables []Collidable

func (p collidables) Index(i int) kdtree.Comparable         { return p[i] }
func (p collidables) Len() int                              { return len(p) }
func (p collidables) Pivot(d kdtree.Dim) int                { return plane{Dim: d, collidables: p}.Pivot() }
func (p collidables) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane упорядочивает точки вдоль одной оси для выбора медианы
type plane struct {
	kdtree.Dim
	collidables
}

// Less задаёт полный порядок: ось плоскости, другая ось, затем handle.
// Совпадающие позиции иначе уходят в одну сторону от медианы и дерево вырождается в цепочку.
func (p plane) Less(i, j int) bool {
	a, b := p.collidables[i], p.collidables[j]
	ak, bk := a.Pos.X, b.Pos.X
	ao, bo := a.Pos.Y, b.Pos.Y
	if p.Dim != 0 {
		ak, bk, ao, bo = ao, bo, ak, bk
	}
	switch {
	case ak != bk:
		return ak < bk
	case ao != bo:
		return ao < bo
	case a.Target.Index != b.Target.Index:
		return a.Target.Index < b.Target.Index
	default:
		return a.Target.Gen < b.Target.Gen
	}
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.collidables = p.collidables[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.collidables[i], p.collidables[j] = p.collidables[j], p.collidables[i]
}
