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

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Engine   EngineConfig
	Cycle    CycleConfig
	Exports  ExportsConfig
	Caching  CachingConfig
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

// EngineConfig carries the default solver tuning. Per-request overrides win.
type EngineConfig struct {
	PopulationSize      int
	Generations         int
	MutationRate        float64
	CrossoverRate       float64
	EliteCount          int
	TournamentSize      int
	StagnationLimit     int
	AnnealingIterations int
	InitialTemperature  float64
	CoolingRate         float64
	SolveDeadline       time.Duration
	Alternatives        int
	ProposalTTL         time.Duration
}

// CycleConfig tunes the multi-term cycle orchestrator.
type CycleConfig struct {
	Alternatives int
	ParetoLimit  int
	Workers      int
	Async        bool
	JobWorkers   int
	JobRetries   int
}

// ExportsConfig controls timetable file export storage and signed downloads.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

// CachingConfig governs Redis-backed read caching for published timetables.
type CachingConfig struct {
	Enabled  bool
	CacheTTL time.Duration
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

	cfg.Engine = EngineConfig{
		PopulationSize:      v.GetInt("ENGINE_POPULATION_SIZE"),
		Generations:         v.GetInt("ENGINE_GENERATIONS"),
		MutationRate:        v.GetFloat64("ENGINE_MUTATION_RATE"),
		CrossoverRate:       v.GetFloat64("ENGINE_CROSSOVER_RATE"),
		EliteCount:          v.GetInt("ENGINE_ELITE_COUNT"),
		TournamentSize:      v.GetInt("ENGINE_TOURNAMENT_SIZE"),
		StagnationLimit:     v.GetInt("ENGINE_STAGNATION_LIMIT"),
		AnnealingIterations: v.GetInt("ENGINE_ANNEALING_ITERATIONS"),
		InitialTemperature:  v.GetFloat64("ENGINE_INITIAL_TEMPERATURE"),
		CoolingRate:         v.GetFloat64("ENGINE_COOLING_RATE"),
		SolveDeadline:       parseDuration(v.GetString("ENGINE_SOLVE_DEADLINE"), 10*time.Second),
		Alternatives:        v.GetInt("ENGINE_ALTERNATIVES"),
		ProposalTTL:         parseDuration(v.GetString("ENGINE_PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Cycle = CycleConfig{
		Alternatives: v.GetInt("CYCLE_ALTERNATIVES"),
		ParetoLimit:  v.GetInt("CYCLE_PARETO_LIMIT"),
		Workers:      v.GetInt("CYCLE_WORKERS"),
		Async:        v.GetBool("CYCLE_ASYNC"),
		JobWorkers:   v.GetInt("CYCLE_JOB_WORKERS"),
		JobRetries:   v.GetInt("CYCLE_JOB_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Caching = CachingConfig{
		Enabled:  v.GetBool("ENABLE_CACHING"),
		CacheTTL: parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
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
	v.SetDefault("DB_NAME", "uni_timetable")
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

	v.SetDefault("ENGINE_POPULATION_SIZE", 40)
	v.SetDefault("ENGINE_GENERATIONS", 120)
	v.SetDefault("ENGINE_MUTATION_RATE", 0.08)
	v.SetDefault("ENGINE_CROSSOVER_RATE", 0.85)
	v.SetDefault("ENGINE_ELITE_COUNT", 2)
	v.SetDefault("ENGINE_TOURNAMENT_SIZE", 3)
	v.SetDefault("ENGINE_STAGNATION_LIMIT", 25)
	v.SetDefault("ENGINE_ANNEALING_ITERATIONS", 4000)
	v.SetDefault("ENGINE_INITIAL_TEMPERATURE", 50)
	v.SetDefault("ENGINE_COOLING_RATE", 0.995)
	v.SetDefault("ENGINE_SOLVE_DEADLINE", "10s")
	v.SetDefault("ENGINE_ALTERNATIVES", 3)
	v.SetDefault("ENGINE_PROPOSAL_TTL", "30m")

	v.SetDefault("CYCLE_ALTERNATIVES", 3)
	v.SetDefault("CYCLE_PARETO_LIMIT", 5)
	v.SetDefault("CYCLE_WORKERS", 4)
	v.SetDefault("CYCLE_ASYNC", false)
	v.SetDefault("CYCLE_JOB_WORKERS", 1)
	v.SetDefault("CYCLE_JOB_RETRIES", 2)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("ENABLE_CACHING", false)
	v.SetDefault("CACHE_TTL", "10m")
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
