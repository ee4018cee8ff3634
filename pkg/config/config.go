package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Optimizer OptimizerConfig
	Snapshot  SnapshotConfig
	Jobs      JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OptimizerConfig carries the RunConfig defaults cmd/server falls back to
// when a caller omits a field, never the
// algorithm's internal constants themselves (those travel explicitly on
// RunConfig per run, see internal/optimizer).
type OptimizerConfig struct {
	PopulationSize    int
	Generations       int
	EliteCount        int
	MutationBaseRate  float64
	MutationRampRate  float64
	EarlyStopFitness  float64
	DefaultRunTimeout time.Duration
}

// SnapshotConfig configures the Dataset Loader's caching behaviour.
type SnapshotConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// JobsConfig tunes the async worker queue cmd/server uses to run optimizer
// jobs off the request goroutine.
type JobsConfig struct {
	Workers    int
	QueueDepth int
	MaxRetries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Optimizer = OptimizerConfig{
		PopulationSize:    v.GetInt("OPTIMIZER_POPULATION_SIZE"),
		Generations:       v.GetInt("OPTIMIZER_GENERATIONS"),
		EliteCount:        v.GetInt("OPTIMIZER_ELITE_COUNT"),
		MutationBaseRate:  v.GetFloat64("OPTIMIZER_MUTATION_BASE_RATE"),
		MutationRampRate:  v.GetFloat64("OPTIMIZER_MUTATION_RAMP_RATE"),
		EarlyStopFitness:  v.GetFloat64("OPTIMIZER_EARLY_STOP_FITNESS"),
		DefaultRunTimeout: parseDuration(v.GetString("OPTIMIZER_RUN_TIMEOUT"), 30*time.Second),
	}

	cfg.Snapshot = SnapshotConfig{
		CacheEnabled: v.GetBool("SNAPSHOT_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("SNAPSHOT_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		QueueDepth: v.GetInt("JOBS_QUEUE_DEPTH"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_optimizer")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPTIMIZER_POPULATION_SIZE", 10)
	v.SetDefault("OPTIMIZER_GENERATIONS", 20)
	v.SetDefault("OPTIMIZER_ELITE_COUNT", 2)
	v.SetDefault("OPTIMIZER_MUTATION_BASE_RATE", 0.1)
	v.SetDefault("OPTIMIZER_MUTATION_RAMP_RATE", 0.3)
	v.SetDefault("OPTIMIZER_EARLY_STOP_FITNESS", 0.98)
	v.SetDefault("OPTIMIZER_RUN_TIMEOUT", "30s")

	v.SetDefault("SNAPSHOT_CACHE_ENABLED", false)
	v.SetDefault("SNAPSHOT_CACHE_TTL", "10m")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_QUEUE_DEPTH", 32)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
