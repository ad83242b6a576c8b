package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSigningKey = "dev-secret-key-change-in-production"
)

// Config is the full process configuration. Business code receives the
// relevant section through constructors and never reads the environment.
type Config struct {
	Server       Server
	Auth         AuthConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Verification VerificationConfig
	Doctor       DoctorConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// AuthConfig configures access token issuance.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration

	// BootstrapAdminEmail and BootstrapAdminPassword seed the first
	// dgtt_admin at startup when both are set.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// RedisConfig configures the Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures audit event transport. No brokers disables the
// outbox relay and the consumer; audit events then go straight to audit_logs.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	ConsumerGroup string
	RelayInterval time.Duration
	RelayBatch    int
}

// VerificationConfig configures the public verification surface.
type VerificationConfig struct {
	BaseURL    string
	RateLimit  int
	RateWindow time.Duration
}

// DoctorConfig configures doctor onboarding.
type DoctorConfig struct {
	TempPasswordTTL time.Duration
}

func (c Server) IsProduction() bool { return c.Environment == EnvProduction }

func (c DatabaseConfig) Enabled() bool { return c.URL != "" }
func (c RedisConfig) Enabled() bool    { return c.URL != "" }
func (c KafkaConfig) Enabled() bool    { return len(c.Brokers) > 0 }

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		Server: Server{
			Addr:            getEnv("MEDCERT_ADDR", ":8080"),
			Environment:     getEnv("ENVIRONMENT", EnvDevelopment),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", defaultJWTSigningKey),
			JWTIssuer:     getEnv("JWT_ISSUER", "medcert"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "medcert-api"),
			TokenTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),

			BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrateOnStart:  getEnvBool("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS"),
			AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "medcert.audit"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "medcert-audit-materializer"),
			RelayInterval: getEnvDuration("OUTBOX_RELAY_INTERVAL", time.Second),
			RelayBatch:    getEnvInt("OUTBOX_RELAY_BATCH", 100),
		},
		Verification: VerificationConfig{
			BaseURL:    getEnv("VERIFY_BASE_URL", "http://localhost:8080/api/verify"),
			RateLimit:  getEnvInt("VERIFY_RATE_LIMIT", 60),
			RateWindow: getEnvDuration("VERIFY_RATE_WINDOW", time.Minute),
		},
		Doctor: DoctorConfig{
			TempPasswordTTL: getEnvDuration("TEMP_PASSWORD_TTL", 48*time.Hour),
		},
	}

	if cfg.Server.IsProduction() && cfg.Auth.JWTSigningKey == defaultJWTSigningKey {
		return Config{}, errors.New("JWT_SIGNING_KEY must be set in production")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
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
