package collision

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/entity"
	"github.com/annel0/bullethell/internal/logging"
	"github.com/annel0/bullethell/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 10 * time.Millisecond

func newTestSystem(t *testing.T, hm *entity.HostileManager, src ProjectileSource, opts ...Option) *System {
	t.Helper()
	cfg := config.Default().Collision
	cfg.RefreshInterval = 200 * time.Millisecond
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	s, err := NewSystem(cfg, hm, src, opts...)
	require.NoError(t, err)
	return s
}

// advance прогоняет кадры до следующего срабатывания часов включительно
func advance(s *System, frames int) ResolveStats {
	var st ResolveStats
	for i := 0; i < frames; i++ {
		st = s.Update(frame)
	}
	return st
}

func TestNewSystem_RejectsInvalidConfig(t *testing.T) {
	hm := entity.NewHostileManager(true)
	for name, mutate := range map[string]func(*config.Collision){
		"interval": func(c *config.Collision) { c.RefreshInterval = 0 },
		"radius":   func(c *config.Collision) { c.QueryRadius = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default().Collision
			mutate(&cfg)
			_, err := NewSystem(cfg, hm, shots{})
			assert.Error(t, err)
		})
	}
}

func TestSystem_InitialIndexEmpty(t *testing.T) {
	hm := entity.NewHostileManager(true)
	h := hm.Spawn(vec.New(0, 0), 100, 0)
	s := newTestSystem(t, hm, shots{vec.New(0, 0)})

	require.NotNil(t, s.Current())
	assert.Equal(t, 0, s.Current().Len())

	st := s.Update(frame)
	assert.Equal(t, ResolveStats{Projectiles: 1}, st, "До первого перестроения попаданий нет, но снаряд учтён")
	hostile, _ := hm.Get(h)
	assert.Equal(t, 100.0, hostile.Health)
}

func TestSystem_RebuildVisibleInSameFrame(t *testing.T) {
	hm := entity.NewHostileManager(true)
	hm.Spawn(vec.New(0, 0), 1000, 0)
	s := newTestSystem(t, hm, shots{vec.New(0, 0)})

	// 19 кадров по 10ms: часы ещё не сработали
	st := advance(s, 19)
	assert.Equal(t, 0, st.Hits)
	assert.Equal(t, uint64(0), s.Totals().Rebuilds)

	// 20-й кадр: перестроение и запрос в одном кадре
	st = s.Update(frame)
	assert.Equal(t, uint64(1), s.Totals().Rebuilds)
	assert.Equal(t, 1, st.Hits)
	assert.Equal(t, 1, s.Current().Len())
}

func TestSystem_StalenessBound(t *testing.T) {
	hm := entity.NewHostileManager(true)
	s := newTestSystem(t, hm, shots{vec.New(100, 100)})
	advance(s, 20)
	require.Equal(t, uint64(1), s.Totals().Rebuilds)

	// Враг появился после перестроения: невидим до следующего
	late := hm.Spawn(vec.New(100, 100), 1000, 0)
	st := advance(s, 19)
	assert.Equal(t, 0, st.Hits)
	assert.Equal(t, 0, s.Current().Len())

	st = s.Update(frame)
	assert.Equal(t, uint64(2), s.Totals().Rebuilds)
	assert.Equal(t, 1, st.Hits, "После следующего перестроения враг виден")

	hostile, _ := hm.Get(late)
	assert.Equal(t, 900.0, hostile.Health)
}

func TestSystem_DespawnBeforeRebuild(t *testing.T) {
	hm := entity.NewHostileManager(true)
	h := hm.Spawn(vec.New(100, 100), 1000, 0)
	s := newTestSystem(t, hm, shots{})
	s.Rebuild()
	require.Len(t, s.Current().Query(vec.New(100, 100), 50), 1)

	// Между перестроениями индекс ещё помнит исчезнувшего врага
	hm.Despawn(h)
	assert.Len(t, s.Current().Query(vec.New(100, 100), 50), 1)

	// Сценарий D: после перестроения последней позиции врага в индексе нет
	s.Rebuild()
	assert.Empty(t, s.Current().Query(vec.New(100, 100), 50))
}

func TestSystem_StaleHitsCountedNotFatal(t *testing.T) {
	hm := entity.NewHostileManager(true)
	h := hm.Spawn(vec.New(0, 0), 1000, 0)
	s := newTestSystem(t, hm, shots{vec.New(0, 0), vec.New(1, 1)})
	s.Rebuild()
	hm.Despawn(h)

	st := s.Update(frame)
	assert.Equal(t, ResolveStats{Projectiles: 2, Stale: 2}, st)
	assert.Equal(t, 2, s.Totals().Stale)
	assert.Equal(t, st, s.Last())
}

func TestSystem_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	hm := entity.NewHostileManager(true)
	a := hm.Spawn(vec.New(0, 0), 1000, 0)
	hm.Spawn(vec.New(10, 0), 1000, 0)
	s := newTestSystem(t, hm, shots{vec.New(0, 0)}, WithMetrics(m))

	advance(s, 20)
	hm.Despawn(a)
	s.Update(frame)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rebuilds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.indexedHostiles))
	assert.Equal(t, 21.0, testutil.ToFloat64(m.queries), "Снаряды считаются и до первого перестроения")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleHits))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "bullethell_collision_rebuild_duration_seconds")
}

func TestSystem_GridBackend(t *testing.T) {
	hm := entity.NewHostileManager(true)
	h := hm.Spawn(vec.New(-40, -40), 100, 0)

	cfg := config.Default().Collision
	cfg.Index = config.IndexGrid
	cfg.GridCellSize = 32
	var buf bytes.Buffer
	s, err := NewSystem(cfg, hm, shots{vec.New(-10, -10)}, WithLogger(logging.NewWriterLogger("collision", &buf, logging.TRACE)))
	require.NoError(t, err)

	s.Rebuild()
	_, isGrid := s.Current().(*Grid)
	assert.True(t, isGrid)
	assert.Contains(t, buf.String(), "Grid Stats: 1 points, 1 cells", "Заполненность сетки пишется в лог перестроения")

	s.Update(frame)
	hostile, _ := hm.Get(h)
	assert.Equal(t, 0.0, hostile.Health)
}

func TestSystem_ConcurrentReadersSeeCompleteIndex(t *testing.T) {
	hm := entity.NewHostileManager(true)
	for i := 0; i < 2000; i++ {
		hm.Spawn(vec.New(float64(i%50)*10, float64(i/50)*10), 100, 0)
	}
	s := newTestSystem(t, hm, shots{})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				idx := s.Current()
				n := idx.Len()
				if n != 0 && n != 2000 {
					t.Errorf("читатель увидел частичный индекс: %d", n)
					return
				}
				_ = idx.Query(vec.New(250, 200), 30)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		s.Rebuild()
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, 2000, s.Current().Len())
}

func TestSystem_RebuildAfterHordeConverges(t *testing.T) {
	const n = 5000
	hm := entity.NewHostileManager(true)
	for i := 0; i < n; i++ {
		hm.Spawn(vec.FromAngle(float64(i), 900), 100, 90)
	}
	// 90 ед/с * 11.2 с больше радиуса кольца: все враги стоят на игроке
	for i := 0; i < 700; i++ {
		hm.Update(0.016, vec.Vec2{})
	}
	s := newTestSystem(t, hm, shots{})

	start := time.Now()
	require.Equal(t, n, s.Rebuild())
	assert.Less(t, time.Since(start), time.Second, "Перестроение по сошедшейся орде")
	assert.Len(t, s.Current().Query(vec.Vec2{}, 1), n)
}
