package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/bullethell/internal/collision"
	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/logging"
	"github.com/annel0/bullethell/internal/vec"
	"github.com/google/uuid"
)

// Приоритеты шагов кадра
const (
	PrioritySpawner   = 10
	PriorityWeapon    = 20
	PriorityMovement  = 30
	PriorityCollision = 40
	PriorityReaper    = 50
)

// summaryEvery период сводки в логе, по времени симуляции
const summaryEvery = 5 * time.Second

// Player неподвижный игрок в начале координат
type Player struct {
	Pos vec.Vec2
}

// Stats снимок состояния сессии, публикуемый в конце кадра
type Stats struct {
	SessionID   string        `json:"session_id"`
	Frame       uint64        `json:"frame"`
	SimTime     time.Duration `json:"sim_time_ns"`
	Hostiles    int           `json:"hostiles"`
	Projectiles int           `json:"projectiles"`
	IndexSize   int           `json:"index_size"`
	Spawned     uint64        `json:"spawned"`
	Fired       uint64        `json:"fired"`
	Expired     uint64        `json:"expired"`
	Kills       uint64        `json:"kills"`
	Rebuilds    uint64        `json:"rebuilds"`
	Hits        int           `json:"hits"`
	StaleHits   int           `json:"stale_hits"`
	LastHits    int           `json:"last_frame_hits"`

	// Время с последнего перестроения индекса
	SinceRebuild time.Duration `json:"since_rebuild_ns"`
}

// Session связывает спаунер, оружие, движение, столкновения и уборку
// в один упорядоченный кадровый цикл.
type Session struct {
	ID          string
	Player      Player
	Hostiles    *entity.HostileManager
	Projectiles *entity.ProjectileManager
	Collision   *collision.System

	cfg      config.Config
	pipeline *Pipeline
	spawner  *Spawner
	weapon   *Weapon
	log      *logging.Logger

	frame       uint64
	simTime     time.Duration
	nextSummary time.Duration
	expired     uint64
	kills       uint64

	statsMu sync.RWMutex
	stats   Stats
}

type sessionOptions struct {
	log       *logging.Logger
	collision []collision.Option
}

// SessionOption настраивает Session
type SessionOption func(*sessionOptions)

// WithSessionLogger заменяет логгер компонента sim
func WithSessionLogger(l *logging.Logger) SessionOption {
	return func(o *sessionOptions) { o.log = l }
}

// WithCollisionOptions передаёт опции в подсистему столкновений
func WithCollisionOptions(opts ...collision.Option) SessionOption {
	return func(o *sessionOptions) { o.collision = append(o.collision, opts...) }
}

// NewSession проверяет конфигурацию и собирает сессию
func NewSession(cfg config.Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.GetSimLogger()
	}

	s := &Session{
		ID:          uuid.NewString(),
		Hostiles:    entity.NewHostileManager(cfg.Collision.StrictHandles),
		Projectiles: entity.NewProjectileManager(),
		cfg:         cfg,
		pipeline:    NewPipeline(),
		spawner:     NewSpawner(cfg.Hostile, cfg.Sim.Seed),
		weapon:      NewWeapon(cfg.Weapon),
		log:         o.log,
		nextSummary: summaryEvery,
	}

	sys, err := collision.NewSystem(cfg.Collision, s.Hostiles, s.Projectiles, o.collision...)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	s.Collision = sys

	s.pipeline.Register(PrioritySpawner, StepFunc{StepName: "spawner", Fn: func(dt time.Duration) {
		s.spawner.Update(dt, s.Player.Pos, s.Hostiles)
	}})
	s.pipeline.Register(PriorityWeapon, StepFunc{StepName: "weapon", Fn: func(dt time.Duration) {
		s.weapon.Update(dt, s.Player.Pos, s.Projectiles)
	}})
	s.pipeline.Register(PriorityMovement, StepFunc{StepName: "movement", Fn: func(dt time.Duration) {
		sec := dt.Seconds()
		s.Hostiles.Update(sec, s.Player.Pos)
		s.expired += uint64(s.Projectiles.Update(sec))
	}})
	s.pipeline.Register(PriorityCollision, StepFunc{StepName: "collision", Fn: func(dt time.Duration) {
		s.Collision.Update(dt)
	}})
	s.pipeline.Register(PriorityReaper, StepFunc{StepName: "reaper", Fn: func(time.Duration) {
		s.kills += uint64(s.Hostiles.Reap(nil))
	}})

	s.log.Info("Сессия %s создана: индекс %s, перестроение каждые %s, радиус %.1f",
		s.ID, cfg.Collision.Index, cfg.Collision.RefreshInterval, cfg.Collision.QueryRadius)
	s.publish()
	return s, nil
}

// Pipeline возвращает конвейер шагов кадра
func (s *Session) Pipeline() *Pipeline {
	return s.pipeline
}

// Config возвращает конфигурацию сессии
func (s *Session) Config() config.Config {
	return s.cfg
}

// Step продвигает симуляцию на один кадр длительностью dt
func (s *Session) Step(dt time.Duration) {
	s.pipeline.Run(dt)
	s.frame++
	s.simTime += dt
	s.publish()

	if s.simTime >= s.nextSummary {
		s.nextSummary += summaryEvery
		st := s.Stats()
		s.log.Debug("t=%s врагов=%d снарядов=%d убито=%d перестроений=%d попаданий=%d",
			st.SimTime, st.Hostiles, st.Projectiles, st.Kills, st.Rebuilds, st.Hits)
	}
}

// Run выполняет frames кадров по dt без ожидания реального времени.
// frames <= 0 означает работу до отмены ctx.
func (s *Session) Run(ctx context.Context, frames int, dt time.Duration) error {
	if dt <= 0 {
		return fmt.Errorf("sim: %w: frame delta %s", config.ErrInvalidValue, dt)
	}
	for i := 0; frames <= 0 || i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step(dt)
	}
	return nil
}

// RunRealtime выполняет кадр на каждый тик, пока не отменён ctx или не
// выполнено frames кадров. frames <= 0 снимает ограничение.
func (s *Session) RunRealtime(ctx context.Context, frames int, dt time.Duration) error {
	if dt <= 0 {
		return fmt.Errorf("sim: %w: frame delta %s", config.ErrInvalidValue, dt)
	}
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step(dt)
		}
	}
	return nil
}

// Stats возвращает последний опубликованный снимок; безопасен из любой горутины
func (s *Session) Stats() Stats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

func (s *Session) publish() {
	totals := s.Collision.Totals()
	st := Stats{
		SessionID:   s.ID,
		Frame:       s.frame,
		SimTime:     s.simTime,
		Hostiles:    s.Hostiles.Count(),
		Projectiles: s.Projectiles.Count(),
		IndexSize:   s.Collision.Current().Len(),
		Spawned:     s.spawner.Spawned(),
		Fired:       s.weapon.Fired(),
		Expired:     s.expired,
		Kills:       s.kills,
		Rebuilds:    totals.Rebuilds,
		Hits:        totals.Hits,
		StaleHits:   totals.Stale,
		LastHits:    s.Collision.Last().Hits,

		SinceRebuild: s.Collision.Clock().Elapsed(),
	}
	s.statsMu.Lock()
	s.stats = st
	s.statsMu.Unlock()
}
