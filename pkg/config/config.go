package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Corpus     CorpusConfig
	Extraction ExtractionConfig
	Redis      RedisConfig
	Neo4j      Neo4jConfig
	SQLite     SQLiteConfig
	Watch      WatchConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	RateLimit      int
	AllowedOrigins []string
	Development    bool
}

type CorpusConfig struct {
	Root      string
	Extension string
}

type ExtractionConfig struct {
	// Policy is "pattern" or "vocabulary".
	Policy         string
	VocabularyFile string
	Workers        int
	FailFast       bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type Neo4jConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

type SQLiteConfig struct {
	Enabled bool
	Path    string
}

type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mdgraph")

	v.SetEnvPrefix("MDGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Extraction.Policy {
	case "pattern", "vocabulary":
	default:
		return fmt.Errorf("invalid extraction policy %q: want pattern or vocabulary", c.Extraction.Policy)
	}

	if c.Corpus.Root == "" {
		return errors.New("corpus root is required")
	}
	if !strings.HasPrefix(c.Corpus.Extension, ".") {
		return fmt.Errorf("invalid corpus extension %q", c.Corpus.Extension)
	}
	if c.Extraction.Workers < 1 {
		c.Extraction.Workers = 1
	}

	return nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.rateLimit", 120)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.development", false)

	v.SetDefault("corpus.root", "./src/md")
	v.SetDefault("corpus.extension", ".md")

	v.SetDefault("extraction.policy", "pattern")
	v.SetDefault("extraction.vocabularyFile", "")
	v.SetDefault("extraction.workers", 4)
	v.SetDefault("extraction.failFast", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("neo4j.enabled", false)
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("sqlite.enabled", true)
	v.SetDefault("sqlite.path", "./data/mdgraph.db")

	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce", 500*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
