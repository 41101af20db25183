// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Advisory  AdvisoryConfig          `mapstructure:"advisory"`
	Cache     CacheConfig             `mapstructure:"cache"`
	Analytics AnalyticsConfig         `mapstructure:"analytics"`
	Scoring   ScoringConfig           `mapstructure:"scoring"`
	Flavor    FlavorConfig            `mapstructure:"flavor"`
	HTTP      HTTPConfig              `mapstructure:"http"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Configured reports whether enough is set to open a connection.
func (p PostgresConfig) Configured() bool {
	return p.Host != "" && p.Database != "" && p.User != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single address shorthand
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AdvisoryConfig points at the LLM gateway used for personalised results.
// An empty BaseURL or APIKey is valid: every advisory call then degrades to
// the deterministic fallbacks.
type AdvisoryConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    int           `mapstructure:"timeout"` // milliseconds
	MaxRetries int           `mapstructure:"max_retries"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxFailures int `mapstructure:"max_failures"`
	OpenTimeout int `mapstructure:"open_timeout"` // milliseconds
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type CacheConfig struct {
	Backend            string `mapstructure:"backend"`
	Namespace          string `mapstructure:"namespace"`
	RecommendationsTTL int    `mapstructure:"recommendations_ttl"` // milliseconds
	RankingsTTL        int    `mapstructure:"rankings_ttl"`        // milliseconds
	SummariesTTL       int    `mapstructure:"summaries_ttl"`       // milliseconds
	FallbackTTL        int    `mapstructure:"fallback_ttl"`        // milliseconds, 0 = same as the kind TTL
}

const (
	AnalyticsSinkNone          = "none"
	AnalyticsSinkPostgres      = "postgres"
	AnalyticsSinkElasticsearch = "elasticsearch"
)

type AnalyticsConfig struct {
	Sink    string `mapstructure:"sink"`
	Table   string `mapstructure:"table"`
	Index   string `mapstructure:"index"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type ScoringConfig struct {
	WarmThreshold       float64 `mapstructure:"warm_threshold"` // degrees Celsius
	PopularityThreshold int     `mapstructure:"popularity_threshold"`
	PopularityBoost     float64 `mapstructure:"popularity_boost"`
	MaxResults          int     `mapstructure:"max_results"`
}

type FlavorConfig struct {
	MaxSelected int `mapstructure:"max_selected"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
