package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/bullethell/internal/collision"
	"github.com/annel0/bullethell/internal/config"
	"github.com/annel0/bullethell/internal/diag"
	"github.com/annel0/bullethell/internal/logging"
	"github.com/annel0/bullethell/internal/observability"
	"github.com/annel0/bullethell/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию ENV BULLETHELL_CONFIG)")
	frames := flag.Int("frames", 3750, "число кадров; 0 работает до сигнала")
	realtime := flag.Bool("realtime", false, "шагать по таймеру в реальном времени")
	index := flag.String("index", "", "переопределить бэкенд индекса: kdtree или grid")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if *index != "" {
		cfg.Collision.Index = *index
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Fatalf("Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("Телеметрия отключена: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка остановки телеметрии: %v", err)
				}
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	session, err := sim.NewSession(*cfg, sim.WithCollisionOptions(collision.WithMetrics(collision.NewMetrics(reg))))
	if err != nil {
		logging.Error("Ошибка создания сессии: %v", err)
		os.Exit(1)
	}

	if cfg.Diagnostics.Enabled {
		gin.SetMode(gin.ReleaseMode)
		srv, err := diag.NewServer(diag.Config{
			Port:     cfg.Diagnostics.GetDiagnosticsPort(),
			Registry: reg,
			Stats:    session,
		})
		if err != nil {
			logging.Error("Ошибка создания диагностики: %v", err)
			os.Exit(1)
		}
		logging.Info("Статистика: http://localhost%s/stats", srv.Addr())
		go func() {
			if err := srv.Start(); err != nil {
				logging.Error("%v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	dt := session.Config().Sim.FrameDelta
	logging.Info("Старт сессии %s: кадров=%d dt=%s realtime=%v", session.ID, *frames, dt, *realtime)
	start := time.Now()
	if *realtime {
		err = session.RunRealtime(ctx, *frames, dt)
	} else {
		err = session.Run(ctx, *frames, dt)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Сессия прервана: %v", err)
	}

	printSummary(session.Stats(), time.Since(start), diag.NewProcessSampler().Sample())
}

func setupLogging(c config.Logging) error {
	name, err := config.ParseLevelName(c.Level)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	opts := logging.Options{Dir: c.Dir, ConsoleLevel: level, FileLevel: logging.TRACE}
	logging.GetLoggerManager().Configure(opts)
	return logging.InitDefaultLogger("bullethell", opts)
}

func printSummary(st sim.Stats, wall time.Duration, proc diag.ProcessStats) {
	fmt.Printf("session     %s\n", st.SessionID)
	fmt.Printf("frames      %d (sim %s, wall %s)\n", st.Frame, st.SimTime, wall.Round(time.Millisecond))
	fmt.Printf("hostiles    alive=%d spawned=%d killed=%d\n", st.Hostiles, st.Spawned, st.Kills)
	fmt.Printf("projectiles alive=%d fired=%d expired=%d\n", st.Projectiles, st.Fired, st.Expired)
	fmt.Printf("collision   rebuilds=%d index=%d hits=%d stale=%d\n", st.Rebuilds, st.IndexSize, st.Hits, st.StaleHits)
	fmt.Printf("process     rss=%.1fMB heap=%.1fMB gc=%d\n", proc.RSSMB, proc.HeapMB, proc.NumGC)
}
