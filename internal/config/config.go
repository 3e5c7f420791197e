// internal/config/config.go

// Package config 載入服務設定（YAML），支援 ${VAR} 與 ${VAR:-default} 環境變數替換。
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// 儲存後端種類。
const (
	BackendMemory   = "memory"
	BackendSnapshot = "snapshot"
	BackendRedis    = "redis"
)

// ErrFileNotFound 代表設定檔不存在。
var ErrFileNotFound = errors.New("configuration file not found")

// Config 為完整服務設定。
type Config struct {
	HTTPServer HTTPServerConfig `yaml:"httpserver"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LogConfig        `yaml:"logging"`
}

// HTTPServerConfig 為 HTTP 傳輸層設定。Workers 為 0 時使用 CPU 數。
type HTTPServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	Workers         int           `yaml:"workers"`
}

// StoreConfig 選擇並設定帳戶儲存後端。
type StoreConfig struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"`
	Redis   RedisConfig   `yaml:"redis"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// RedisConfig 為 Redis 後端連線設定。
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// BreakerConfig 為儲存層熔斷器設定。
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConsecutiveFailures uint32        `yaml:"consecutiveFailures"`
	Timeout             time.Duration `yaml:"timeout"`
}

// LogConfig 為 logger 設定。
type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Default 回傳預設設定：記憶體後端、:8080、production logger。
func Default() *Config {
	return &Config{
		HTTPServer: HTTPServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    "data.json",
			Redis: RedisConfig{
				Address: "127.0.0.1:6379",
				Prefix:  "accounts:",
			},
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				Timeout:             30 * time.Second,
			},
		},
		Logging: LogConfig{
			Level:       "info",
			Environment: "production",
		},
	}
}

// Load 讀取 path 的 YAML 設定並套用在預設值之上。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse 先替換環境變數，再解析 YAML，最後驗證。
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(substituteEnvVars(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 檢查設定的一致性。
func (c *Config) Validate() error {
	if c.HTTPServer.Address == "" {
		return errors.New("config: httpserver.address is required")
	}
	if c.HTTPServer.Workers < 0 {
		return fmt.Errorf("config: httpserver.workers must be >= 0, got %d", c.HTTPServer.Workers)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSnapshot:
		if c.Store.Path == "" {
			return errors.New("config: store.path is required for snapshot backend")
		}
	case BackendRedis:
		if c.Store.Redis.Address == "" {
			return errors.New("config: store.redis.address is required for redis backend")
		}
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// substituteEnvVars 將 ${VAR} 與 ${VAR:-default} 替換為環境變數值。
func substituteEnvVars(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := envPattern.FindSubmatch(m)
		if v, ok := os.LookupEnv(string(sub[1])); ok {
			return []byte(v)
		}
		return sub[2]
	})
}
