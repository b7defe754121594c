package collision

import (
	"fmt"
	"math"

	"github.com/annel0/bullethell/internal/vec"
)

// Grid равномерная сетка над снимком врагов.
// В отличие от k-d дерева строится за O(n), но деградирует на плотных кластерах.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]Collidable
	n        int
}

// cellKey представляет ключ ячейки в пространственной сетке
type cellKey struct {
	x, y int
}

// BuildGrid раскладывает points по ячейкам размера cellSize.
// Неположительный cellSize заменяется размером по умолчанию.
func BuildGrid(points []Collidable, cellSize float64) *Grid {
	if !(cellSize > 0) {
		cellSize = 100.0
	}
	g := &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]Collidable, len(points)/4+1),
		n:        len(points),
	}
	for _, c := range points {
		key := g.keyFor(c.Pos)
		g.cells[key] = append(g.cells[key], c)
	}
	return g
}

// Len возвращает число точек
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return g.n
}

// CellCount возвращает количество непустых ячеек
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// Query возвращает точки в радиусе radius вокруг p
func (g *Grid) Query(p vec.Vec2, radius float64) []Collidable {
	return collect(g, p, radius)
}

// QueryFunc обходит ячейки, пересекающие квадрат вокруг круга, и фильтрует по расстоянию
func (g *Grid) QueryFunc(p vec.Vec2, radius float64, fn func(Collidable)) {
	if g == nil || g.n == 0 || !(radius > 0) {
		return
	}
	lo := g.keyFor(vec.Vec2{X: p.X - radius, Y: p.Y - radius})
	hi := g.keyFor(vec.Vec2{X: p.X + radius, Y: p.Y + radius})
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, c := range g.cells[cellKey{x: x, y: y}] {
				if p.Within(c.Pos, radius) {
					fn(c)
				}
			}
		}
	}
}

// Stats возвращает статистику сетки
func (g *Grid) Stats() string {
	maxPerCell := 0
	for _, cell := range g.cells {
		if len(cell) > maxPerCell {
			maxPerCell = len(cell)
		}
	}
	cells := g.CellCount()
	avg := 0.0
	if cells > 0 {
		avg = float64(g.n) / float64(cells)
	}
	return fmt.Sprintf("Grid Stats: %d points, %d cells, avg %.2f points/cell, max %d points/cell",
		g.n, cells, avg, maxPerCell)
}

// keyFor округляет вниз, поэтому отрицательные координаты попадают в свои ячейки
func (g *Grid) keyFor(p vec.Vec2) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}
