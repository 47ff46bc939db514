// Package config reads the registry's runtime settings from the environment
// (optionally seeded from a .env file) into a typed struct.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	PublicURL      string
	LoginURL       string
	CORSOrigins    string
	RequestTimeout time.Duration

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	TOSVersion int

	AdminEmail    string
	AdminPassword string

	UploadMaxBytes int64
	UploadMaxRows  int

	EPRELBaseURL string
	EPRELAPIKey  string
	EPRELTimeout time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	WorkerConcurrency int

	KafkaBrokers   []string
	KafkaTopic     string
	OutboxInterval time.Duration
	OutboxBatch    int
}

const (
	defaultPort           = "3000"
	defaultEnv            = "development"
	defaultLoginURL       = "/auth"
	defaultRequestTimeout = 30 * time.Second
	defaultJWTTTL         = 8 * time.Hour
	defaultUploadMaxBytes = 5 << 20 // 5 MiB
	defaultUploadMaxRows  = 1000
	defaultEPRELTimeout   = 10 * time.Second
	defaultBucket         = "eie-product-files"
	defaultKafkaTopic     = "eie.product-status"
	defaultOutboxInterval = 2 * time.Second
	defaultOutboxBatch    = 50
	defaultConcurrency    = 4
	defaultAdminEmail     = "admin@invitalia.it"
)

// loader accumulates parse failures so Load can report all of them at once.
type loader struct {
	errs []error
}

// Load reads the .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	l := &loader{}
	cfg := &Config{
		Port:           readEnv("PORT", defaultPort),
		Env:            readEnv("APP_ENV", defaultEnv),
		LogLevel:       readEnv("LOG_LEVEL", "info"),
		PublicURL:      strings.TrimRight(readEnv("PUBLIC_URL", ""), "/"),
		LoginURL:       readEnv("LOGIN_URL", defaultLoginURL),
		CORSOrigins:    readEnv("CORS_ORIGINS", "*"),
		RequestTimeout: l.duration("REQUEST_TIMEOUT", defaultRequestTimeout),

		DBDriver:    strings.ToLower(readEnv("DB_DRIVER", "postgres")),
		DatabaseURL: readEnv("DATABASE_URL", ""),
		SQLitePath:  readEnv("SQLITE_PATH", "eie.db"),

		JWTSecret: readEnv("JWT_SECRET", ""),
		JWTTTL:    l.duration("JWT_TTL", defaultJWTTTL),

		TOSVersion: l.integer("TOS_VERSION", 1),

		AdminEmail:    readEnv("SEED_ADMIN_EMAIL", defaultAdminEmail),
		AdminPassword: readEnv("SEED_ADMIN_PASSWORD", ""),

		UploadMaxBytes: l.int64Value("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
		UploadMaxRows:  l.integer("UPLOAD_MAX_ROWS", defaultUploadMaxRows),

		EPRELBaseURL: strings.TrimRight(readEnv("EPREL_BASE_URL", ""), "/"),
		EPRELAPIKey:  readEnv("EPREL_API_KEY", ""),
		EPRELTimeout: l.duration("EPREL_TIMEOUT", defaultEPRELTimeout),

		MinioEndpoint:  readEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: readEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: readEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    l.boolean("MINIO_USE_SSL", false),
		MinioBucket:    readEnv("MINIO_BUCKET", defaultBucket),

		RedisAddr:         readEnv("REDIS_ADDR", ""),
		RedisPassword:     readEnv("REDIS_PASSWORD", ""),
		RedisDB:           l.integer("REDIS_DB", 0),
		WorkerConcurrency: l.integer("WORKER_CONCURRENCY", defaultConcurrency),

		KafkaBrokers:   parseList("KAFKA_BROKERS"),
		KafkaTopic:     readEnv("KAFKA_TOPIC", defaultKafkaTopic),
		OutboxInterval: l.duration("OUTBOX_INTERVAL", defaultOutboxInterval),
		OutboxBatch:    l.integer("OUTBOX_BATCH", defaultOutboxBatch),
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules that single-variable parsing cannot.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.UploadMaxRows <= 0 {
		return errors.New("UPLOAD_MAX_ROWS must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.TOSVersion <= 0 {
		return errors.New("TOS_VERSION must be positive")
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = defaultConcurrency
	}
	if c.OutboxBatch <= 0 {
		c.OutboxBatch = defaultOutboxBatch
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "test"
}

// BasePath is the path the routes are mounted under, taken from PUBLIC_URL.
// Both "https://host/eie" and "/eie" give "/eie".
func (c *Config) BasePath() string {
	u, err := url.Parse(c.PublicURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return "/" + strings.Trim(u.Path, "/")
}

// Secret returns the signing secret, falling back to a fixed key in development.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("eie-dev-secret-change-me")
	}
	return []byte(c.JWTSecret)
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func parseList(key string) []string {
	raw := readEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *loader) integer(key string, def int) int {
	v := readEnv(key, "")
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return parsed
}

func (l *loader) int64Value(key string, def int64) int64 {
	v := readEnv(key, "")
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return parsed
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := readEnv(key, "")
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return parsed
}

func (l *loader) boolean(key string, def bool) bool {
	v := readEnv(key, "")
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return parsed
}
