// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация Postgres (история контекстов)
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// История — аудит-канал; БД можно выключить целиком
	Enabled bool

	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig - конфигурация Redis (кэш контекстов)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TTL записей "market state"
	ContextTTL time.Duration
}

// Addr возвращает адрес host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ============================================
// КОНФИГУРАЦИЯ АНАЛИЗАТОРОВ
// ============================================

// SwingConfig - параметры детектора свингов
type SwingConfig struct {
	Lookback    int
	MinStrength float64
}

// TrendConfig - параметры анализатора тренда
type TrendConfig struct {
	Lookback int
}

// RangeConfig - параметры детектора диапазонов
type RangeConfig struct {
	MinTouches   int
	MinRangeSize float64
	MaxLookback  int
}

// FibonacciConfig - параметры анализатора Фибоначчи
type FibonacciConfig struct {
	BufferPercent float64
}

// AnalyzersConfig - конфигурация пайплайна.
// Order — явный порядок включённых анализаторов.
type AnalyzersConfig struct {
	Order     []string
	Swing     SwingConfig
	Trend     TrendConfig
	Range     RangeConfig
	Fibonacci FibonacciConfig
}

// EngineConfig - параметры движка контекста
type EngineConfig struct {
	OpTimeout      time.Duration
	HistoryRetries int
	RetryDelay     time.Duration
}

// EventBusConfig - параметры шины событий
type EventBusConfig struct {
	BufferSize  int
	WorkerCount int
	MaxRetries  int
	RetryDelay  time.Duration
}

// LoggingConfig - параметры логирования
type LoggingConfig struct {
	Level     string
	File      string
	DebugMode bool
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string
	Exchange    string

	Database  DatabaseConfig
	Redis     RedisConfig
	Analyzers AnalyzersConfig
	Engine    EngineConfig
	EventBus  EventBusConfig
	Logging   LoggingConfig
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("⚠️ .env не найден (%s), используем переменные окружения", path)
	}

	cfg := &Config{}

	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Exchange = getEnv("EXCHANGE", "binance")

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", true)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 5)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.ContextTTL = getEnvDuration("CONTEXT_TTL", 24*time.Hour)

	// ======================
	// АНАЛИЗАТОРЫ
	// ======================
	cfg.Analyzers.Order = getEnvList("ANALYZER_ORDER", []string{"swing", "trend", "range", "fibonacci"})
	cfg.Analyzers.Swing.Lookback = getEnvInt("SWING_LOOKBACK", 2)
	cfg.Analyzers.Swing.MinStrength = getEnvFloat("SWING_MIN_STRENGTH", 0.01)
	cfg.Analyzers.Trend.Lookback = getEnvInt("TREND_LOOKBACK", 3)
	cfg.Analyzers.Range.MinTouches = getEnvInt("RANGE_MIN_TOUCHES", 2)
	cfg.Analyzers.Range.MinRangeSize = getEnvFloat("RANGE_MIN_SIZE", 0.02)
	cfg.Analyzers.Range.MaxLookback = getEnvInt("RANGE_MAX_LOOKBACK", 100)
	cfg.Analyzers.Fibonacci.BufferPercent = getEnvFloat("FIB_BUFFER_PERCENT", 0.002)

	// ======================
	// ДВИЖОК КОНТЕКСТА
	// ======================
	cfg.Engine.OpTimeout = getEnvDuration("ENGINE_OP_TIMEOUT", 3*time.Second)
	cfg.Engine.HistoryRetries = getEnvInt("ENGINE_HISTORY_RETRIES", 2)
	cfg.Engine.RetryDelay = getEnvDuration("ENGINE_RETRY_DELAY", 100*time.Millisecond)

	// ======================
	// ШИНА СОБЫТИЙ
	// ======================
	cfg.EventBus.BufferSize = getEnvInt("EVENT_BUS_BUFFER_SIZE", 1000)
	cfg.EventBus.WorkerCount = getEnvInt("EVENT_BUS_WORKER_COUNT", 10)
	cfg.EventBus.MaxRetries = getEnvInt("EVENT_BUS_MAX_RETRIES", 3)
	cfg.EventBus.RetryDelay = getEnvDuration("EVENT_BUS_RETRY_DELAY", 100*time.Millisecond)

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "logs/market_context.log")
	cfg.Logging.DebugMode = getEnvBool("DEBUG_MODE", false)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate проверяет обязательные параметры конфигурации
func (c *Config) validate() error {
	var validationErrors []string

	if c.Exchange == "" {
		validationErrors = append(validationErrors, "EXCHANGE is required")
	}
	if len(c.Analyzers.Order) == 0 {
		validationErrors = append(validationErrors, "ANALYZER_ORDER must not be empty")
	}
	if c.Analyzers.Swing.Lookback <= 0 {
		validationErrors = append(validationErrors, "SWING_LOOKBACK must be positive")
	}
	if c.Analyzers.Trend.Lookback < 2 {
		validationErrors = append(validationErrors, "TREND_LOOKBACK must be at least 2")
	}
	if c.Database.Enabled && c.Database.Name == "" {
		validationErrors = append(validationErrors, "DB_NAME is required when DB_ENABLED")
	}
	if c.Redis.ContextTTL <= 0 {
		validationErrors = append(validationErrors, "CONTEXT_TTL must be positive")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// ============================================
// ХЕЛПЕРЫ ЧТЕНИЯ ОКРУЖЕНИЯ
// ============================================

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %d", key, value, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, fallback)
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
