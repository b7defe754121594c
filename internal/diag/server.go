package diag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/bullethell/internal/logging"
	"github.com/annel0/bullethell/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// StatsProvider источник снимка симуляции; обычно *sim.Session
type StatsProvider interface {
	Stats() sim.Stats
}

// Config параметры диагностического сервера
type Config struct {
	Port     int                  // порт прослушивания
	Registry *prometheus.Registry // реестр для /metrics и HTTP-метрик
	Stats    StatsProvider
	Logger   *logging.Logger
}

// Server HTTP-сервер диагностики: /health, /stats, /metrics.
// Только чтение: на ход симуляции не влияет.
type Server struct {
	router  *gin.Engine
	srv     *http.Server
	stats   StatsProvider
	sampler *ProcessSampler
	log     *logging.Logger
}

// NewServer создаёт сервер и регистрирует маршруты
func NewServer(cfg Config) (*Server, error) {
	if cfg.Stats == nil {
		return nil, errors.New("diag: stats provider is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("diag: registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetDiagLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("bullethell_diag"))
	router.Use(requestLogger(cfg.Logger))
	router.Use(newHTTPMetrics(cfg.Registry).handler())

	s := &Server{
		router:  router,
		stats:   cfg.Stats,
		sampler: NewProcessSampler(),
		log:     cfg.Logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	return s, nil
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr адрес прослушивания
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start блокируется до Shutdown; http.ErrServerClosed не считается ошибкой
func (s *Server) Start() error {
	s.log.Info("Диагностика слушает %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("diag: listen %s: %w", s.srv.Addr, err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь текущих запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleHealth проверка состояния
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleStats снимок симуляции и ресурсов процесса
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session": s.stats.Stats(),
		"process": s.sampler.Sample(),
	})
}
