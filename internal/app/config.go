package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from environment variables, optionally seeded from the YAML
// file named by CONFIG_PATH. Secrets only come from the environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Pinecone PineconeConfig `yaml:"pinecone"`
	Coverage CoverageConfig `yaml:"coverage"`
	Redis    RedisConfig    `yaml:"redis"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	OTel     OTelConfig     `yaml:"otel"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	LogMode         string        `yaml:"log_mode" env:"LOG_MODE" env-default:"development"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	LogRedact       bool          `yaml:"log_redact" env:"LOG_REDACT" env-default:"true"`
	LogHashSalt     string        `yaml:"-" env:"LOG_HASH_SALT"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password        string        `yaml:"-" env:"POSTGRES_PASSWORD"`
	Name            string        `yaml:"name" env:"POSTGRES_NAME" env-default:"quantpath"`
	SSLMode         string        `yaml:"ssl_mode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"30m"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" env:"POSTGRES_SLOW_THRESHOLD" env-default:"1s"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"POSTGRES_AUTO_MIGRATE" env-default:"true"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"-" env:"OPENAI_API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:""`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	EmbedModel  string        `yaml:"embed_model" env:"OPENAI_EMBED_MODEL" env-default:"text-embedding-3-small"`
	Timeout     time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" env-default:"60s"`
	Temperature float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.2"`
}

type PineconeConfig struct {
	APIKey          string        `yaml:"-" env:"PINECONE_API_KEY"`
	APIVersion      string        `yaml:"api_version" env:"PINECONE_API_VERSION" env-default:""`
	BaseURL         string        `yaml:"base_url" env:"PINECONE_BASE_URL" env-default:""`
	IndexName       string        `yaml:"index_name" env:"PINECONE_INDEX_NAME" env-default:""`
	IndexHost       string        `yaml:"index_host" env:"PINECONE_INDEX_HOST" env-default:""`
	NamespacePrefix string        `yaml:"namespace_prefix" env:"PINECONE_NAMESPACE_PREFIX" env-default:""`
	Timeout         time.Duration `yaml:"timeout" env:"PINECONE_TIMEOUT" env-default:"30s"`
}

type CoverageConfig struct {
	Threshold     float64  `yaml:"threshold" env:"COVERAGE_THRESHOLD" env-default:"0.58"`
	TopK          int      `yaml:"top_k" env:"COVERAGE_TOP_K" env-default:"50"`
	Namespaces    []string `yaml:"namespaces" env:"COVERAGE_NAMESPACES" env-separator:"," env-default:"esl,islr,web"`
	WebNamespaces []string `yaml:"web_namespaces" env:"COVERAGE_WEB_NAMESPACES" env-separator:"," env-default:"web"`
	Concurrency   int      `yaml:"concurrency" env:"COVERAGE_CONCURRENCY" env-default:"1"`
	// FallbackPath overrides the embedded fallback resource table.
	FallbackPath string `yaml:"fallback_path" env:"COVERAGE_FALLBACK_PATH" env-default:""`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Channel  string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"learning"`
}

type Neo4jConfig struct {
	URI         string        `yaml:"uri" env:"NEO4J_URI" env-default:""`
	User        string        `yaml:"user" env:"NEO4J_USER" env-default:"neo4j"`
	Password    string        `yaml:"-" env:"NEO4J_PASSWORD"`
	Database    string        `yaml:"database" env:"NEO4J_DATABASE" env-default:""`
	Timeout     time.Duration `yaml:"timeout" env:"NEO4J_TIMEOUT" env-default:"10s"`
	MaxPoolSize int           `yaml:"max_pool_size" env:"NEO4J_MAX_POOL_SIZE" env-default:"50"`
}

type OTelConfig struct {
	Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"quantpath-backend"`
	Environment string  `yaml:"environment" env:"OTEL_ENVIRONMENT" env-default:"local"`
	Version     string  `yaml:"version" env:"OTEL_SERVICE_VERSION" env-default:"dev"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	Headers     string  `yaml:"-" env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
}

// LoadConfig reads CONFIG_PATH when set, then the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Coverage.Threshold < 0 || c.Coverage.Threshold > 1 {
		return fmt.Errorf("COVERAGE_THRESHOLD must be within [0, 1], got %v", c.Coverage.Threshold)
	}
	if c.Coverage.TopK <= 0 {
		return fmt.Errorf("COVERAGE_TOP_K must be positive, got %d", c.Coverage.TopK)
	}
	if c.Coverage.Concurrency <= 0 {
		c.Coverage.Concurrency = 1
	}
	c.Coverage.Namespaces = cleanList(c.Coverage.Namespaces)
	c.Coverage.WebNamespaces = cleanList(c.Coverage.WebNamespaces)
	c.Server.CORSOrigins = cleanList(c.Server.CORSOrigins)
	if len(c.Coverage.Namespaces) == 0 {
		return fmt.Errorf("COVERAGE_NAMESPACES must name at least one namespace")
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
