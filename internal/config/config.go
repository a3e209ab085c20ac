package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// FileEnv names the optional YAML config file.
const FileEnv = "REMARK_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string        `koanf:"app_env"`
	DBPath                string        `koanf:"db_path"`
	DBDriver              string        `koanf:"db_driver"`
	RedisAddr             string        `koanf:"redis_addr"`
	GRPCPort              int           `koanf:"grpc_port"`
	GRPCReflectionEnabled bool          `koanf:"grpc_reflection_enabled"`
	MetricsAddr           string        `koanf:"metrics_addr"`
	GeminiAPIKey          string        `koanf:"gemini_api_key"`
	GeminiModel           string        `koanf:"gemini_model"`
	GenerationTimeout     time.Duration `koanf:"generation_timeout"`
	FallbackRemark        string        `koanf:"fallback_remark"`
	CacheTTL              time.Duration `koanf:"cache_ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		AppEnv:            "development",
		DBPath:            "./data/remarks.db",
		DBDriver:          "sqlite3",
		RedisAddr:         "localhost:6379",
		GRPCPort:          50051,
		MetricsAddr:       ":9090",
		GeminiModel:       "gemini-2.0-flash",
		GenerationTimeout: 60 * time.Second,
		FallbackRemark:    "Hoàn thành nhiệm vụ học tập theo yêu cầu.",
		CacheTTL:          10 * time.Minute,
	}
}

// knownKeys limits the env provider to the keys Config declares.
var knownKeys = map[string]struct{}{
	"app_env": {}, "db_path": {}, "db_driver": {}, "redis_addr": {},
	"grpc_port": {}, "grpc_reflection_enabled": {}, "metrics_addr": {},
	"gemini_api_key": {}, "gemini_model": {}, "generation_timeout": {},
	"fallback_remark": {}, "cache_ttl": {},
}

// Load builds a Config from defaults, then the YAML file named by
// REMARK_CONFIG, then environment variables. A .env file in the working
// directory is read into the environment first when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		s = strings.ToLower(s)
		if _, ok := knownKeys[s]; !ok {
			return ""
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("%w: grpc_port %d out of range", ErrInvalidConfig, c.GRPCPort)
	}
	if c.DBDriver == "" {
		return fmt.Errorf("%w: db_driver must not be empty", ErrInvalidConfig)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("%w: generation_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
