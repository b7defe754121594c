package collision

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// slowRebuild порог, после которого перестроение логируется как WARN
const slowRebuild = 16 * time.Millisecond

// HostileSink источник снимков и приёмник урона; обычно entity.HostileManager
type HostileSink interface {
	HostileSource
	DamageSink
}

// Totals накопленные счётчики за сессию
type Totals struct {
	Rebuilds uint64
	ResolveStats
}

type indexRef struct {
	idx Index
}

// System владеет текущим индексом и выполняет двухфазный цикл кадра:
// возможное перестроение по часам, затем обязательный проход запросов.
// Update вызывается из одного кадрового цикла; Current безопасен из любой горутины.
type System struct {
	hostiles HostileSink
	shots    ProjectileSource
	clock    *RefreshClock
	resolver Resolver
	build    Builder
	current  atomic.Pointer[indexRef]
	scratch  []Collidable
	totals   Totals
	last     ResolveStats

	metrics *Metrics
	log     *logging.Logger
	tracer  trace.Tracer
}

// Option настраивает System
type Option func(*System)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(s *System) { s.metrics = m }
}

// WithLogger заменяет логгер компонента collision
func WithLogger(l *logging.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithTracer заменяет трассировщик перестроений
func WithTracer(t trace.Tracer) Option {
	return func(s *System) { s.tracer = t }
}

// WithBuilder заменяет построитель индекса, выбранный по конфигурации
func WithBuilder(b Builder) Option {
	return func(s *System) { s.build = b }
}

// NewSystem создаёт подсистему столкновений. Начальный индекс пуст:
// до первого срабатывания часов попаданий нет.
func NewSystem(cfg config.Collision, hostiles HostileSink, shots ProjectileSource, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("collision: invalid config: %w", err)
	}

	s := &System{
		hostiles: hostiles,
		shots:    shots,
		clock:    NewRefreshClock(cfg.RefreshInterval),
		resolver: Resolver{Radius: cfg.QueryRadius, Damage: cfg.DamagePerHit},
		build:    KDTreeBuilder(),
	}
	if cfg.Index == config.IndexGrid {
		s.build = GridBuilder(cfg.GridCellSize)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.GetCollisionLogger()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/annel0/bullethell/internal/collision")
	}

	s.current.Store(&indexRef{idx: s.build(nil)})
	return s, nil
}

// Update выполняет цикл кадра. Если часы сработали, перестроение завершается
// и становится видимым до запросов этого же кадра.
func (s *System) Update(dt time.Duration) ResolveStats {
	if s.clock.Advance(dt) {
		s.Rebuild()
	}
	st := s.resolver.Resolve(s.Current(), s.shots, s.hostiles)
	s.last = st
	s.totals.Add(st)
	s.metrics.observeResolve(st)
	return st
}

// Rebuild снимает позиции живых врагов, строит новый индекс и атомарно
// заменяет им текущий. Возвращает размер нового индекса.
func (s *System) Rebuild() int {
	_, span := s.tracer.Start(context.Background(), "collision.rebuild")
	defer span.End()

	start := time.Now()
	s.scratch = SnapshotInto(s.hostiles, s.scratch)
	idx := s.build(s.scratch)
	s.current.Store(&indexRef{idx: idx})
	took := time.Since(start)

	s.totals.Rebuilds++
	s.metrics.observeRebuild(idx.Len(), took)
	span.SetAttributes(
		attribute.Int("collision.hostiles", idx.Len()),
		attribute.Int64("collision.rebuild", int64(s.totals.Rebuilds)),
	)

	switch {
	case took > slowRebuild:
		s.log.Warn("Перестроение #%d: %d врагов за %s, дольше кадра", s.totals.Rebuilds, idx.Len(), took)
		s.logGridStats(logging.WARN, idx)
	case s.log.Enabled(logging.TRACE):
		s.log.Trace("Перестроение #%d: %d врагов за %s", s.totals.Rebuilds, idx.Len(), took)
		s.logGridStats(logging.TRACE, idx)
	}
	return idx.Len()
}

// logGridStats дописывает заполненность ячеек, если бэкенд сетка
func (s *System) logGridStats(level logging.LogLevel, idx Index) {
	g, ok := idx.(*Grid)
	if !ok {
		return
	}
	if level == logging.WARN {
		s.log.Warn("%s", g.Stats())
		return
	}
	s.log.Trace("%s", g.Stats())
}

// Current возвращает последний завершённый индекс
func (s *System) Current() Index {
	return s.current.Load().idx
}

// Clock возвращает часы перестроения
func (s *System) Clock() *RefreshClock {
	return s.clock
}

// Totals возвращает накопленные счётчики
func (s *System) Totals() Totals {
	return s.totals
}

// Last возвращает статистику последнего прохода запросов
func (s *System) Last() ResolveStats {
	return s.last
}
