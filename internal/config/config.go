package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shareit-platform/service-booking/internal/platform/database"
)

const envPrefix = "BOOKING"

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds the item cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig holds per-client request limits. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// BookingPolicy holds business knobs for booking creation.
type BookingPolicy struct {
	RejectPastStart bool
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port                string
	AppEnv              string
	Storage             string
	AllowHeaderIdentity bool
	DBConfig            database.PostgresConfig
	JWTConfig           JWTConfig
	KafkaConfig         KafkaConfig
	RedisConfig         RedisConfig
	RateLimit           RateLimitConfig
	Policy              BookingPolicy
}

// Load reads configuration from BOOKING_* environment variables, after
// loading an optional .env file from the working directory.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:                normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv:              v.GetString("APP_ENV"),
		Storage:             strings.ToLower(v.GetString("STORAGE")),
		AllowHeaderIdentity: v.GetBool("ALLOW_HEADER_IDENTITY"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			AccessTTL: v.GetDuration("JWT_ACCESS_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Enabled:     v.GetBool("KAFKA_ENABLED"),
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Policy: BookingPolicy{
			RejectPastStart: v.GetBool("REJECT_PAST_START"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", ":8082")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("ALLOW_HEADER_IDENTITY", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shareit_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ACCESS_TTL", 15*time.Minute)
	v.SetDefault("KAFKA_ENABLED", true)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "shareit-")
	v.SetDefault("REDIS_TTL", 5*time.Minute)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REJECT_PAST_START", true)
}

func (c *ServiceConfig) validate() error {
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("%s_STORAGE must be %q or %q, got %q", envPrefix, StoragePostgres, StorageMemory, c.Storage)
	}
	if c.JWTConfig.Secret == "" && !c.AllowHeaderIdentity {
		return fmt.Errorf("%s_JWT_SECRET is required when header identity is disabled", envPrefix)
	}
	if c.KafkaConfig.Enabled && len(c.KafkaConfig.Brokers) == 0 {
		return fmt.Errorf("%s_KAFKA_BROKERS is required when kafka is enabled", envPrefix)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("%s_RATE_LIMIT_BURST must be positive", envPrefix)
	}
	return nil
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
