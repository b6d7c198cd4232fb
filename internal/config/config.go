package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// FileEnv names the optional YAML file with defaults. Keys in the file use the
// same names as the environment variables; the environment wins.
const FileEnv = "STOREFRONT_CONFIG"

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string

	CatalogAPIURL string
	DataAPIURL    string
	RemoteTimeout time.Duration

	StateBackend  string
	StateDSN      string
	MongoURI      string
	MongoDBName   string
	RedisAddr     string
	RedisPassword string
	StateTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret         string
	SessionTTL        time.Duration
	SessionIdleTTL    time.Duration
	AdminLogins       []string
	AdminPasswordHash string
	AdminName         string

	Tracing  string
	LogLevel string
}

// Load reads .env (when present), the optional YAML file and the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Warn("error loading .env file", "error", err)
		}
	}

	src, err := newSource(os.Getenv(FileEnv))
	if err != nil {
		return nil, err
	}
	return src.build()
}

type source struct {
	file map[string]string
	errs []error
}

func newSource(path string) (*source, error) {
	s := &source{file: map[string]string{}}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return s, nil
}

func (s *source) build() (*Config, error) {
	cfg := &Config{
		HTTPPort:           s.getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     s.getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    s.getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: s.getInt64("MAX_REQUEST_BODY_SIZE", 1<<20),
		AllowedOrigins:     s.getList("ALLOWED_ORIGINS", []string{"*"}),

		CatalogAPIURL: s.getEnv("CATALOG_API_URL", "https://api.escuelajs.co/api/v1"),
		DataAPIURL:    s.getEnv("DATA_API_URL", "https://697a423e0e6ff62c3c58f63b.mockapi.io"),
		RemoteTimeout: s.getDuration("REMOTE_TIMEOUT", 10*time.Second),

		StateBackend:  strings.ToLower(s.getEnv("STATE_BACKEND", BackendSQLite)),
		StateDSN:      s.getEnv("STATE_DSN", "file:storefront.db?_pragma=busy_timeout(5000)"),
		MongoURI:      s.getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   s.getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:     s.getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: s.getEnv("REDIS_PASSWORD", ""),
		StateTTL:      s.getDuration("STATE_TTL", 30*24*time.Hour),

		KafkaBrokers: s.getList("KAFKA_BROKERS", nil),
		KafkaTopic:   s.getEnv("KAFKA_TOPIC", "storefront-orders"),

		JWTSecret:         s.getEnv("JWT_SECRET", ""),
		SessionTTL:        s.getDuration("SESSION_TTL", 7*24*time.Hour),
		SessionIdleTTL:    s.getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		AdminLogins:       s.getList("ADMIN_LOGINS", nil),
		AdminPasswordHash: s.getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminName:         s.getEnv("ADMIN_NAME", "Store Admin"),

		Tracing:  strings.ToLower(s.getEnv("TRACING", "off")),
		LogLevel: s.getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		s.errs = append(s.errs, errors.New("JWT_SECRET is required"))
	}
	switch cfg.StateBackend {
	case BackendSQLite, BackendPostgres, BackendMongo, BackendRedis, BackendMemory:
	default:
		s.errs = append(s.errs, fmt.Errorf("STATE_BACKEND %q is not one of sqlite, postgres, mongo, redis, memory", cfg.StateBackend))
	}
	if cfg.StateBackend == BackendPostgres && s.lookup("STATE_DSN") == "" {
		s.errs = append(s.errs, errors.New("STATE_DSN is required for the postgres backend"))
	}

	if err := errors.Join(s.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (s *source) lookup(key string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return s.file[key]
}

func (s *source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s *source) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := s.lookup(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return d
}

func (s *source) getInt64(key string, defaultValue int64) int64 {
	raw := s.lookup(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return defaultValue
	}
	return v
}

func (s *source) getList(key string, defaultValue []string) []string {
	raw := s.lookup(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
