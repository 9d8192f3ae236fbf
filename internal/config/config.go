package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server           ServerConfig           `toml:"server"`
	Database         DatabaseConfig         `toml:"database"`
	Logs             LogsConfig             `toml:"logs"`
	Metrics          MetricsConfig          `toml:"metrics"`
	DirectoryService DirectoryServiceConfig `toml:"directory_service"`
	Scheduling       SchedulingConfig       `toml:"scheduling"`
	Cache            CacheConfig            `toml:"cache"`
	Events           EventsConfig           `toml:"events"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"` // postgres | memory
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type DirectoryServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// SchedulingConfig параметры планировщика слотов
type SchedulingConfig struct {
	Strategy               string `toml:"strategy"`      // on_demand | materialized
	ConflictMode           string `toml:"conflict_mode"` // exact_start | overlap
	ReleaseSlotOnCancel    bool   `toml:"release_slot_on_cancel"`
	MaterializeHorizonDays int    `toml:"materialize_horizon_days"`
	MaterializeCron        string `toml:"materialize_cron"`
}

// CacheConfig кэш списка свободных слотов в redis
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// EventsConfig публикация событий жизненного цикла записи в kafka
type EventsConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// Load читает конфигурацию из TOML файла, затем применяет .env и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env не обязателен
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "appointments",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "appointment-service",
		},
		DirectoryService: DirectoryServiceConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Scheduling: SchedulingConfig{
			Strategy:               string(domain.StrategyOnDemand),
			ConflictMode:           string(domain.ConflictExactStart),
			MaterializeHorizonDays: 14,
			MaterializeCron:        "0 3 * * *",
		},
		Cache: CacheConfig{
			Addr:       "localhost:6379",
			TTLSeconds: 30,
		},
		Events: EventsConfig{
			Topic: "appointments.lifecycle",
		},
	}
}

// applyEnv переопределяет хосты и секреты из окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = splitList(v)
	}
	if v := os.Getenv("DIRECTORY_SERVICE_URL"); v != "" {
		c.DirectoryService.URL = v
	}
}

// Validate проверяет перечисления и диапазоны
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: database.driver %q (expected postgres or memory)", ErrInvalidConfig, c.Database.Driver)
	}

	if _, err := domain.ParseStrategy(c.Scheduling.Strategy); err != nil {
		return fmt.Errorf("%w: scheduling.strategy: %v", ErrInvalidConfig, err)
	}
	if _, err := domain.ParseConflictMode(c.Scheduling.ConflictMode); err != nil {
		return fmt.Errorf("%w: scheduling.conflict_mode: %v", ErrInvalidConfig, err)
	}
	if c.Scheduling.Strategy == string(domain.StrategyMaterialized) {
		if c.Scheduling.MaterializeHorizonDays <= 0 {
			return fmt.Errorf("%w: scheduling.materialize_horizon_days must be positive", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.Scheduling.MaterializeCron) == "" {
			return fmt.Errorf("%w: scheduling.materialize_cron is required for materialized strategy", ErrInvalidConfig)
		}
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("%w: cache.addr is required when cache is enabled", ErrInvalidConfig)
		}
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("%w: cache.ttl_seconds must be positive", ErrInvalidConfig)
		}
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("%w: events.brokers is required when events are enabled", ErrInvalidConfig)
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("%w: events.topic is required when events are enabled", ErrInvalidConfig)
		}
	}

	return nil
}

// DSN строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
