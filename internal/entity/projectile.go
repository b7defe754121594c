package entity

import (
	"github.com/annel0/bullethell/internal/vec"
)

// Projectile представляет летящий снаряд. В пространственный индекс не попадает.
type Projectile struct {
	Pos       vec.Vec2 // Текущая позиция
	Vel       vec.Vec2 // Скорость, единиц в секунду
	Travelled float64  // Пройденное расстояние
	MaxRange  float64  // Дальность, после которой снаряд исчезает
}

// ProjectileManager хранит живые снаряды плотным срезом.
// Снаряды не адресуются по handle, поэтому удаление идёт через swap-remove.
type ProjectileManager struct {
	items []Projectile
}

// NewProjectileManager создаёт пустой менеджер снарядов
func NewProjectileManager() *ProjectileManager {
	return &ProjectileManager{items: make([]Projectile, 0, 256)}
}

// Spawn добавляет снаряд
func (pm *ProjectileManager) Spawn(pos, vel vec.Vec2, maxRange float64) {
	pm.items = append(pm.items, Projectile{Pos: pos, Vel: vel, MaxRange: maxRange})
}

// Update двигает снаряды и удаляет те, что вышли за дальность.
// Возвращает число удалённых.
func (pm *ProjectileManager) Update(dt float64) int {
	expired := 0
	for i := 0; i < len(pm.items); {
		p := &pm.items[i]
		step := p.Vel.Scale(dt)
		p.Pos = p.Pos.Add(step)
		p.Travelled += step.Len()
		if p.MaxRange > 0 && p.Travelled >= p.MaxRange {
			last := len(pm.items) - 1
			pm.items[i] = pm.items[last]
			pm.items = pm.items[:last]
			expired++
			continue
		}
		i++
	}
	return expired
}

// EachProjectile обходит позиции живых снарядов
func (pm *ProjectileManager) EachProjectile(fn func(pos vec.Vec2)) {
	for i := range pm.items {
		fn(pm.items[i].Pos)
	}
}

// Count возвращает число живых снарядов
func (pm *ProjectileManager) Count() int {
	return len(pm.items)
}

// Clear удаляет все снаряды
func (pm *ProjectileManager) Clear() {
	pm.items = pm.items[:0]
}
