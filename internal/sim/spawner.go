package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/vec"
)

// waveSpread разброс угла вокруг направления волны, радиан
const waveSpread = 0.6

// Spawner порождает врагов кольцом вокруг игрока с ограничением темпа и численности.
// Ограничитель MaxAlive единственная защита от неограниченного роста перестроений.
type Spawner struct {
	cfg     config.Hostile
	rng     *rand.Rand
	wave    *WaveNoise
	budget  float64
	clock   float64
	spawned uint64
}

// NewSpawner создаёт спаунер с детерминированным сидом
func NewSpawner(cfg config.Hostile, seed int64) *Spawner {
	return &Spawner{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		wave: NewWaveNoise(seed, 0.05),
	}
}

// Update накапливает бюджет спавна за dt и порождает врагов вокруг center.
// Возвращает число порождённых.
func (s *Spawner) Update(dt time.Duration, center vec.Vec2, hostiles *entity.HostileManager) int {
	sec := dt.Seconds()
	s.clock += sec
	s.budget += s.cfg.SpawnPerSecond * sec

	n := int(math.Floor(s.budget))
	if n <= 0 {
		return 0
	}
	s.budget -= float64(n)

	if s.cfg.MaxAlive > 0 {
		if room := s.cfg.MaxAlive - hostiles.Count(); n > room {
			n = max(room, 0)
		}
	}

	base := s.wave.Angle(s.clock)
	for i := 0; i < n; i++ {
		angle := base + (s.rng.Float64()*2-1)*waveSpread
		dist := s.cfg.SpawnRadiusMin + s.rng.Float64()*(s.cfg.SpawnRadiusMax-s.cfg.SpawnRadiusMin)
		hostiles.Spawn(center.Add(vec.FromAngle(angle, dist)), s.cfg.Health, s.cfg.Speed)
	}
	s.spawned += uint64(n)
	return n
}

// Spawned возвращает общее число порождённых врагов
func (s *Spawner) Spawned() uint64 {
	return s.spawned
}
