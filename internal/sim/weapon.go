package sim

import (
	"math"
	"time"

	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/vec"
)

// Weapon стреляет из позиции игрока с фиксированным интервалом.
// Прицел вращается с постоянной скоростью AimSweep: ввода игрока здесь нет.
type Weapon struct {
	cfg     config.Weapon
	elapsed time.Duration
	aim     float64
	fired   uint64
}

// NewWeapon создаёт оружие
func NewWeapon(cfg config.Weapon) *Weapon {
	return &Weapon{cfg: cfg}
}

// Update поворачивает прицел и выпускает снаряд, если прошёл интервал.
// Как и таймер оружия, после выстрела счётчик обнуляется без остатка.
func (w *Weapon) Update(dt time.Duration, from vec.Vec2, projectiles *entity.ProjectileManager) bool {
	w.aim = math.Mod(w.aim+w.cfg.AimSweep*dt.Seconds(), 2*math.Pi)
	w.elapsed += dt
	if w.elapsed < w.cfg.FireInterval {
		return false
	}
	w.elapsed = 0
	projectiles.Spawn(from, vec.FromAngle(w.aim, w.cfg.ProjectileSpeed), w.cfg.ProjectileRange)
	w.fired++
	return true
}

// Aim текущий угол прицела, радиан
func (w *Weapon) Aim() float64 {
	return w.aim
}

// Fired возвращает число выстрелов
func (w *Weapon) Fired() uint64 {
	return w.fired
}
