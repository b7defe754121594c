package entity

import (
	"github.com/annel0/bullethell/internal/vec"
)

// Hostile представляет враждебную сущность
type Hostile struct {
	Handle Handle   // Ссылка на слот, выданная при спавне
	Pos    vec.Vec2 // Текущая позиция в мире
	Health float64  // Здоровье; смерть решает Reap, а не тот, кто наносит урон
	Speed  float64  // Скорость движения к цели, единиц в секунду
}

// Dead сообщает, исчерпано ли здоровье
func (h *Hostile) Dead() bool {
	return h.Health <= 0
}

type hostileSlot struct {
	hostile Hostile
	gen     uint32
	alive   bool
}

// HostileManager хранит живых врагов в арене слотов со списком свободных.
// Не потокобезопасен: вызывается только из кадрового цикла.
type HostileManager struct {
	slots []hostileSlot
	free  []uint32
	alive int

	// Strict включает проверку поколения в ApplyDamage. Без неё урон
	// разрешается по номеру слота и может достаться новому жильцу слота.
	Strict bool
}

// NewHostileManager создаёт менеджер врагов
func NewHostileManager(strict bool) *HostileManager {
	return &HostileManager{
		slots:  make([]hostileSlot, 0, 1024),
		free:   make([]uint32, 0, 256),
		Strict: strict,
	}
}

// Spawn создаёт врага и возвращает его handle.
// Освобождённые слоты переиспользуются в порядке LIFO.
func (hm *HostileManager) Spawn(pos vec.Vec2, health, speed float64) Handle {
	var idx uint32
	if n := len(hm.free); n > 0 {
		idx = hm.free[n-1]
		hm.free = hm.free[:n-1]
	} else {
		idx = uint32(len(hm.slots))
		hm.slots = append(hm.slots, hostileSlot{gen: 1})
	}

	s := &hm.slots[idx]
	h := Handle{Index: idx, Gen: s.gen}
	s.hostile = Hostile{Handle: h, Pos: pos, Health: health, Speed: speed}
	s.alive = true
	hm.alive++
	return h
}

// Despawn удаляет врага. Возвращает false, если handle устарел.
func (hm *HostileManager) Despawn(h Handle) bool {
	s := hm.slot(h)
	if s == nil {
		return false
	}
	s.alive = false
	s.gen = nextGen(s.gen)
	s.hostile = Hostile{}
	hm.free = append(hm.free, h.Index)
	hm.alive--
	return true
}

// Get возвращает живого врага по handle с проверкой поколения
func (hm *HostileManager) Get(h Handle) (*Hostile, bool) {
	s := hm.slot(h)
	if s == nil {
		return nil, false
	}
	return &s.hostile, true
}

// Alive сообщает, указывает ли handle на живого врага
func (hm *HostileManager) Alive(h Handle) bool {
	return hm.slot(h) != nil
}

// Count возвращает число живых врагов
func (hm *HostileManager) Count() int {
	return hm.alive
}

// EachHostile обходит живых врагов
func (hm *HostileManager) EachHostile(fn func(h Handle, pos vec.Vec2)) {
	for i := range hm.slots {
		s := &hm.slots[i]
		if s.alive {
			fn(s.hostile.Handle, s.hostile.Pos)
		}
	}
}

// ApplyDamage вычитает amount из здоровья врага.
// Возвращает false, если цель больше не существует; ошибкой это не считается.
func (hm *HostileManager) ApplyDamage(h Handle, amount float64) bool {
	var s *hostileSlot
	if hm.Strict {
		s = hm.slot(h)
	} else if int(h.Index) < len(hm.slots) && hm.slots[h.Index].alive {
		s = &hm.slots[h.Index]
	}
	if s == nil {
		return false
	}
	s.hostile.Health -= amount
	return true
}

// Update двигает всех живых врагов к target
func (hm *HostileManager) Update(dt float64, target vec.Vec2) {
	for i := range hm.slots {
		s := &hm.slots[i]
		if !s.alive {
			continue
		}
		to := target.Sub(s.hostile.Pos)
		step := s.hostile.Speed * dt
		if d := to.Len(); d <= step {
			s.hostile.Pos = target
			continue
		}
		s.hostile.Pos = s.hostile.Pos.Add(to.Normalized().Scale(step))
	}
}

// Reap удаляет всех врагов с исчерпанным здоровьем и возвращает их число.
// onDeath получает копию врага до удаления; может быть nil.
func (hm *HostileManager) Reap(onDeath func(Hostile)) int {
	reaped := 0
	for i := range hm.slots {
		s := &hm.slots[i]
		if !s.alive || !s.hostile.Dead() {
			continue
		}
		dead := s.hostile
		hm.Despawn(dead.Handle)
		if onDeath != nil {
			onDeath(dead)
		}
		reaped++
	}
	return reaped
}

// Clear удаляет всех врагов; поколения слотов продолжают расти
func (hm *HostileManager) Clear() {
	for i := range hm.slots {
		if hm.slots[i].alive {
			hm.Despawn(hm.slots[i].hostile.Handle)
		}
	}
}

func (hm *HostileManager) slot(h Handle) *hostileSlot {
	if int(h.Index) >= len(hm.slots) {
		return nil
	}
	s := &hm.slots[h.Index]
	if !s.alive || s.gen != h.Gen {
		return nil
	}
	return s
}
