// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top, expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known env vars when the files
// leave them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Advisory.APIKey == "" {
		cfg.Advisory.APIKey = os.Getenv("ADVISORY_API_KEY")
	}
	if cfg.Advisory.BaseURL == "" {
		cfg.Advisory.BaseURL = os.Getenv("ADVISORY_BASE_URL")
	}

	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Database.Redis.Password == "" {
		cfg.Database.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "moodbrew-engine"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Advisory.Timeout == 0 {
		cfg.Advisory.Timeout = 15000
	}
	if cfg.Advisory.Breaker.MaxFailures == 0 {
		cfg.Advisory.Breaker.MaxFailures = 5
	}
	if cfg.Advisory.Breaker.OpenTimeout == 0 {
		cfg.Advisory.Breaker.OpenTimeout = 30000
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheBackendMemory
	}
	if cfg.Cache.Namespace == "" {
		cfg.Cache.Namespace = "moodbrew"
	}
	if cfg.Cache.RecommendationsTTL == 0 {
		cfg.Cache.RecommendationsTTL = 5 * 60 * 1000
	}
	if cfg.Cache.RankingsTTL == 0 {
		cfg.Cache.RankingsTTL = 10 * 60 * 1000
	}
	if cfg.Cache.SummariesTTL == 0 {
		cfg.Cache.SummariesTTL = 15 * 60 * 1000
	}

	if cfg.Analytics.Sink == "" {
		cfg.Analytics.Sink = AnalyticsSinkNone
	}
	if cfg.Analytics.Table == "" {
		cfg.Analytics.Table = "ai_analytics"
	}
	if cfg.Analytics.Index == "" {
		cfg.Analytics.Index = "ai-analytics"
	}
	if cfg.Analytics.Timeout == 0 {
		cfg.Analytics.Timeout = 3000
	}

	if cfg.Scoring.WarmThreshold == 0 {
		cfg.Scoring.WarmThreshold = 25
	}
	if cfg.Scoring.PopularityThreshold == 0 {
		cfg.Scoring.PopularityThreshold = 200
	}
	if cfg.Scoring.PopularityBoost == 0 {
		cfg.Scoring.PopularityBoost = 1.25
	}
	if cfg.Scoring.MaxResults == 0 {
		cfg.Scoring.MaxResults = 10
	}

	if cfg.Flavor.MaxSelected == 0 {
		cfg.Flavor.MaxSelected = 3
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if anyWorkerEnabled(cfg) && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when workers are enabled")
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", cfg.Cache.Backend)
	}

	switch cfg.Analytics.Sink {
	case AnalyticsSinkNone:
	case AnalyticsSinkPostgres:
		if !cfg.Database.Postgres.Configured() {
			return fmt.Errorf("database.postgres host, database and user are required for the postgres analytics sink")
		}
	case AnalyticsSinkElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch analytics sink")
		}
	default:
		return fmt.Errorf("analytics.sink %q is not supported", cfg.Analytics.Sink)
	}

	if cfg.Flavor.MaxSelected < 0 {
		return fmt.Errorf("flavor.max_selected must not be negative")
	}

	return nil
}

func anyWorkerEnabled(cfg *Config) bool {
	for _, w := range cfg.Workers {
		if w.Enabled {
			return true
		}
	}
	return false
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       false,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return false
}
