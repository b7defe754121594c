package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Ошибки валидации конфигурации. Validate оборачивает их через %w.
var (
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidRadius   = errors.New("radius must be positive")
	ErrInvalidDamage   = errors.New("damage must be positive")
	ErrInvalidIndex    = errors.New("unknown index kind")
	ErrInvalidValue    = errors.New("value out of range")
)

// Виды пространственного индекса
const (
	IndexKDTree = "kdtree"
	IndexGrid   = "grid"
)

// Config корневая структура конфигурации симуляции
type Config struct {
	Collision   Collision   `yaml:"collision"`
	Hostile     Hostile     `yaml:"hostile"`
	Weapon      Weapon      `yaml:"weapon"`
	Sim         Sim         `yaml:"sim"`
	Logging     Logging     `yaml:"logging"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
	Telemetry   Telemetry   `yaml:"telemetry"`
}

// Collision настройки подсистемы столкновений
type Collision struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Период перестроения индекса
	QueryRadius     float64       `yaml:"query_radius"`     // Радиус поиска вокруг снаряда
	DamagePerHit    float64       `yaml:"damage_per_hit"`   // Урон за одно попадание
	Index           string        `yaml:"index"`            // kdtree или grid
	GridCellSize    float64       `yaml:"grid_cell_size"`   // Размер ячейки для grid
	StrictHandles   bool          `yaml:"strict_handles"`   // Проверять поколение handle при уроне
}

type Hostile struct {
	Health         float64 `yaml:"health"`
	Speed          float64 `yaml:"speed"`
	SpawnPerSecond float64 `yaml:"spawn_per_second"`
	MaxAlive       int     `yaml:"max_alive"`
	SpawnRadiusMin float64 `yaml:"spawn_radius_min"`
	SpawnRadiusMax float64 `yaml:"spawn_radius_max"`
}

type Weapon struct {
	FireInterval    time.Duration `yaml:"fire_interval"`
	ProjectileSpeed float64       `yaml:"projectile_speed"`
	ProjectileRange float64       `yaml:"projectile_range"`
	AimSweep        float64       `yaml:"aim_sweep"` // Радиан в секунду
}

type Sim struct {
	FrameDelta time.Duration `yaml:"frame_delta"`
	Seed       int64         `yaml:"seed"`
}

type Logging struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // Пусто: только консоль
}

type Diagnostics struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию.
// Урон за попадание равен здоровью врага: одно попадание убивает.
func Default() Config {
	return Config{
		Collision: Collision{
			RefreshInterval: 200 * time.Millisecond,
			QueryRadius:     50,
			DamagePerHit:    100,
			Index:           IndexKDTree,
			GridCellSize:    100,
			StrictHandles:   true,
		},
		Hostile: Hostile{
			Health:         100,
			Speed:          90,
			SpawnPerSecond: 40,
			MaxAlive:       50000,
			SpawnRadiusMin: 400,
			SpawnRadiusMax: 900,
		},
		Weapon: Weapon{
			FireInterval:    100 * time.Millisecond,
			ProjectileSpeed: 480,
			ProjectileRange: 1200,
			AimSweep:        2.5,
		},
		Sim: Sim{
			FrameDelta: 16 * time.Millisecond,
			Seed:       42,
		},
		Logging: Logging{
			Level: "info",
		},
		Diagnostics: Diagnostics{
			Enabled: false,
		},
		Telemetry: Telemetry{
			Enabled:     false,
			ServiceName: "bullethell",
		},
	}
}

// Validate проверяет предусловия подсистемы столкновений
func (c Collision) Validate() error {
	var errs []error
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("collision.refresh_interval %v: %w", c.RefreshInterval, ErrInvalidInterval))
	}
	if !(c.QueryRadius > 0) || math.IsInf(c.QueryRadius, 0) {
		errs = append(errs, fmt.Errorf("collision.query_radius %v: %w", c.QueryRadius, ErrInvalidRadius))
	}
	if !(c.DamagePerHit > 0) {
		errs = append(errs, fmt.Errorf("collision.damage_per_hit %v: %w", c.DamagePerHit, ErrInvalidDamage))
	}
	switch c.Index {
	case IndexKDTree:
	case IndexGrid:
		if !(c.GridCellSize > 0) {
			errs = append(errs, fmt.Errorf("collision.grid_cell_size %v: %w", c.GridCellSize, ErrInvalidValue))
		}
	default:
		errs = append(errs, fmt.Errorf("collision.index %q: %w", c.Index, ErrInvalidIndex))
	}
	return errors.Join(errs...)
}

// Validate проверяет конфигурацию целиком
func (c *Config) Validate() error {
	errs := []error{c.Collision.Validate()}
	if c.Weapon.FireInterval <= 0 {
		errs = append(errs, fmt.Errorf("weapon.fire_interval %v: %w", c.Weapon.FireInterval, ErrInvalidInterval))
	}
	if c.Sim.FrameDelta <= 0 {
		errs = append(errs, fmt.Errorf("sim.frame_delta %v: %w", c.Sim.FrameDelta, ErrInvalidInterval))
	}
	if c.Hostile.Health <= 0 || c.Hostile.MaxAlive < 0 || c.Hostile.SpawnPerSecond < 0 {
		errs = append(errs, fmt.Errorf("hostile: health=%v max_alive=%d spawn_per_second=%v: %w",
			c.Hostile.Health, c.Hostile.MaxAlive, c.Hostile.SpawnPerSecond, ErrInvalidValue))
	}
	if c.Hostile.SpawnRadiusMin < 0 || c.Hostile.SpawnRadiusMax < c.Hostile.SpawnRadiusMin {
		errs = append(errs, fmt.Errorf("hostile spawn radii [%v, %v]: %w",
			c.Hostile.SpawnRadiusMin, c.Hostile.SpawnRadiusMax, ErrInvalidValue))
	}
	if _, err := ParseLevelName(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetDiagnosticsPort возвращает порт диагностики: config -> env -> default
func (d *Diagnostics) GetDiagnosticsPort() int {
	return getPortWithEnvFallback(d.Port, "BULLETHELL_DIAG_PORT", 8089)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// ParseLevelName проверяет имя уровня логирования.
// Сам уровень разбирает пакет logging; здесь только допустимые имена.
func ParseLevelName(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "trace", "debug", "info", "warn", "error":
		return n, nil
	case "":
		return "info", nil
	default:
		return "", fmt.Errorf("logging.level %q: %w", name, ErrInvalidValue)
	}
}

// Load читает YAML файл поверх значений по умолчанию.
// Если path == "", пробует ENV BULLETHELL_CONFIG; без него возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("BULLETHELL_CONFIG")
		if path == "" {
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
