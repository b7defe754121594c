package collision

import (
	"github.com/annel0/bullethell/internal/vec"
)

// Index неизменяемый пространственный индекс снимка врагов.
// Обновление означает построение нового индекса и замену ссылки.
type Index interface {
	// Query возвращает все точки в замкнутом круге радиуса radius вокруг p.
	// Порядок не определён. Неположительный радиус даёт пустой результат.
	Query(p vec.Vec2, radius float64) []Collidable

	// QueryFunc как Query, но без выделения результата
	QueryFunc(p vec.Vec2, radius float64, fn func(Collidable))

	// Len возвращает число проиндексированных точек
	Len() int
}

// Builder строит индекс по снимку. Индекс не должен удерживать points:
// вызывающий переиспользует срез при следующем перестроении.
type Builder func(points []Collidable) Index

// KDTreeBuilder строит k-d дерево
func KDTreeBuilder() Builder {
	return func(points []Collidable) Index { return BuildKDTree(points) }
}

// GridBuilder строит равномерную сетку с ячейкой cellSize
func GridBuilder(cellSize float64) Builder {
	return func(points []Collidable) Index { return BuildGrid(points, cellSize) }
}

// BruteForce линейный поиск с тем же правилом границы, что и у индексов
func BruteForce(points []Collidable, p vec.Vec2, radius float64) []Collidable {
	if !(radius > 0) {
		return nil
	}
	var out []Collidable
	for _, c := range points {
		if p.Within(c.Pos, radius) {
			out = append(out, c)
		}
	}
	return out
}

func collect(idx Index, p vec.Vec2, radius float64) []Collidable {
	var out []Collidable
	idx.QueryFunc(p, radius, func(c Collidable) {
		out = append(out, c)
	})
	return out
}
