package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName     string
	Environment string
	Backend     BackendConfig
	Realtime    RealtimeConfig
	State       StateConfig
	Refresh     RefreshConfig
	Dashboard   DashboardConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type RealtimeConfig struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PingInterval time.Duration
}

type StateConfig struct {
	Path string
}

type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
}

type DashboardConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the client can run with zero setup.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskflow"),
		Environment: getString("APP_ENV", "development"),
		Backend: BackendConfig{
			BaseURL:        getString("BACKEND_URL", "http://localhost:8000/api"),
			RequestTimeout: getDuration("BACKEND_REQUEST_TIMEOUT", 10*time.Second),
		},
		Realtime: RealtimeConfig{
			URL:          getString("REALTIME_URL", "ws://localhost:8000/api/v1/ws"),
			MaxRetries:   getInt("REALTIME_MAX_RETRIES", 3),
			RetryBackoff: getDuration("REALTIME_RETRY_BACKOFF", time.Second),
			PingInterval: getDuration("REALTIME_PING_INTERVAL", 30*time.Second),
		},
		State: StateConfig{
			Path: getString("STATE_PATH", defaultStatePath()),
		},
		Refresh: RefreshConfig{
			Enabled:  getBool("REFRESH_ENABLED", true),
			Interval: getDuration("REFRESH_INTERVAL", 5*time.Minute),
		},
		Dashboard: DashboardConfig{
			Host:         getString("DASHBOARD_HOST", "127.0.0.1"),
			Port:         getString("DASHBOARD_PORT", "3000"),
			ReadTimeout:  getDuration("DASHBOARD_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("DASHBOARD_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("DASHBOARD_IDLE_TIMEOUT", 120*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// DashboardAddress returns the listen address for the local dashboard server.
func (c *Config) DashboardAddress() string {
	return fmt.Sprintf("%s:%s", c.Dashboard.Host, c.Dashboard.Port)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./taskflow.db"
	}
	return filepath.Join(home, ".taskflow", "state.db")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
