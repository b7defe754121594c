package collision

import (
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/vec"
)

// ProjectileSource перечисляет позиции живых снарядов
type ProjectileSource interface {
	EachProjectile(fn func(pos vec.Vec2))
}

// DamageSink применяет урон к живому врагу.
// false означает, что handle больше не указывает на живого врага.
type DamageSink interface {
	ApplyDamage(h entity.Handle, amount float64) bool
}

// ResolveStats итог одного прохода запросов
type ResolveStats struct {
	Projectiles int // Снарядов, для которых выполнен запрос
	Hits        int // Попаданий, дошедших до живых врагов
	Stale       int // Попаданий по устаревшим handle, отброшенных молча
}

// Add суммирует статистику
func (s *ResolveStats) Add(o ResolveStats) {
	s.Projectiles += o.Projectiles
	s.Hits += o.Hits
	s.Stale += o.Stale
}

// Resolver наносит фиксированный урон всем врагам в радиусе каждого снаряда.
// Попадания не дедуплицируются: K снарядов по одной цели дают K * Damage.
// Resolver не удаляет ни снаряды, ни врагов и не решает, кто умер.
type Resolver struct {
	Radius float64
	Damage float64
}

// Resolve выполняет проход запросов по индексу idx.
// Снаряды считаются и при пустом индексе; запросы к нему не выполняются.
func (r Resolver) Resolve(idx Index, shots ProjectileSource, sink DamageSink) ResolveStats {
	var st ResolveStats
	empty := idx == nil || idx.Len() == 0
	shots.EachProjectile(func(pos vec.Vec2) {
		st.Projectiles++
		if empty {
			return
		}
		idx.QueryFunc(pos, r.Radius, func(c Collidable) {
			if sink.ApplyDamage(c.Target, r.Damage) {
				st.Hits++
			} else {
				st.Stale++
			}
		})
	})
	return st
}
