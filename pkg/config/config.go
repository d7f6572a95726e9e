package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port   string
	Env    string // development, staging, production
	Server ServerConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Yahoo    YahooConfig
	NSE      NSEConfig
	Telegram TelegramConfig

	// Pipeline
	Fetch  FetchConfig
	Scan   ScanConfig
	Ledger LedgerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// ServerConfig holds the API server timeouts.
// WriteTimeout must cover a synchronous POST /api/refresh over a full group.
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds the quote source configuration
type YahooConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec int
}

// NSEConfig holds the symbol-list source configuration
type NSEConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// TelegramConfig holds the notification channel. Token and chat id are opaque.
type TelegramConfig struct {
	BaseURL  string
	BotToken string
	ChatID   string
}

// FetchConfig holds batch fetch settings
type FetchConfig struct {
	Workers int
}

// ScanConfig holds the caller-side thresholds handed to the pipeline
type ScanConfig struct {
	Group            string
	ProfilePath      string
	MinPctChange     float64
	MinVolume        float64
	BreakoutPct      float64
	VolumeMultiplier float64
	LookbackDays     int
	StopPct          float64
	RiskReward       float64
	RefreshInterval  time.Duration
	AlertsEnabled    bool
}

// LedgerConfig selects where already-alerted symbols are remembered
type LedgerConfig struct {
	Backend string // memory, redis
	TTL     time.Duration

	// ResetSchedule is an optional cron spec (with seconds) that clears the ledger
	// while the process runs. Empty keeps the ledger until restart.
	ResetSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),
		Server: ServerConfig{
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", "2m"),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Yahoo: YahooConfig{
			BaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:        getEnvAsDuration("QUOTE_TIMEOUT", "10s"),
			RequestsPerSec: getEnvAsInt("YAHOO_RPS", 20),
		},

		NSE: NSEConfig{
			BaseURL:  getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			Timeout:  getEnvAsDuration("NSE_TIMEOUT", "10s"),
			CacheTTL: getEnvAsDuration("NSE_CACHE_TTL", "1h"),
		},

		Telegram: TelegramConfig{
			BaseURL:  getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},

		Fetch: FetchConfig{
			Workers: getEnvAsInt("FETCH_WORKERS", 10),
		},

		// Defaults mirror the dashboard's original sidebar
		Scan: ScanConfig{
			Group:            getEnv("SCAN_GROUP", "NIFTY50"),
			ProfilePath:      getEnv("SCAN_PROFILE", ""),
			MinPctChange:     getEnvAsFloat("SCAN_MIN_PCT_CHANGE", 0.2),
			MinVolume:        getEnvAsFloat("SCAN_MIN_VOLUME", 100000),
			BreakoutPct:      getEnvAsFloat("SCAN_BREAKOUT_PCT", 0.5),
			VolumeMultiplier: getEnvAsFloat("SCAN_VOLUME_MULTIPLIER", 1.5),
			LookbackDays:     getEnvAsInt("SCAN_LOOKBACK_DAYS", 20),
			StopPct:          getEnvAsFloat("SCAN_STOP_PCT", 2.0),
			RiskReward:       getEnvAsFloat("SCAN_RISK_REWARD", 2.0),
			RefreshInterval:  getEnvAsDuration("SCAN_REFRESH_INTERVAL", "5m"),
			AlertsEnabled:    getEnvAsBool("SCAN_ALERTS_ENABLED", false),
		},

		Ledger: LedgerConfig{
			Backend: getEnv("LEDGER_BACKEND", "memory"),
			TTL:     getEnvAsDuration("LEDGER_TTL", "24h"),

			ResetSchedule: getEnv("LEDGER_RESET_SCHEDULE", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_*_TIMEOUT values must be positive")
	}

	// a refresh needs at least one symbol lookup and one quote round trip
	if c.Server.WriteTimeout < c.NSE.Timeout+c.Yahoo.Timeout {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be at least NSE_TIMEOUT + QUOTE_TIMEOUT")
	}

	if c.Fetch.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}

	if c.Scan.LookbackDays < 1 {
		return fmt.Errorf("SCAN_LOOKBACK_DAYS must be at least 1")
	}

	if c.Scan.RefreshInterval <= 0 {
		return fmt.Errorf("SCAN_REFRESH_INTERVAL must be positive")
	}

	if c.Ledger.Backend != "memory" && c.Ledger.Backend != "redis" {
		return fmt.Errorf("LEDGER_BACKEND must be one of: memory, redis")
	}

	if c.Ledger.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("LEDGER_BACKEND=redis requires REDIS_ENABLED=true")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
