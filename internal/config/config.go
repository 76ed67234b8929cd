package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config holds everything the discovery service needs. It is built once at
// process start and passed down explicitly.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Model      ModelConfig      `yaml:"model"`
	Sources    SourcesConfig    `yaml:"sources"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CatalogConfig selects and configures the catalog backend.
// An empty Path (sqlite) or DSN (postgres) means the catalog is not configured.
type CatalogConfig struct {
	Driver         string `yaml:"driver"` // sqlite, postgres
	Path           string `yaml:"path"`
	DSN            string `yaml:"dsn"`
	MaxConns       int    `yaml:"max_conns"`
	SimpleProtocol bool   `yaml:"simple_protocol"` // PgBouncer transaction pooling
}

// ModelConfig configures the generative model used for classification
type ModelConfig struct {
	Provider string        `yaml:"provider"` // gemini, anthropic
	APIKey   string        `yaml:"-"`
	Name     string        `yaml:"name"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SourcesConfig holds credentials and endpoints for the upstream feeds
type SourcesConfig struct {
	ProductHuntToken string        `yaml:"-"`
	GitHubToken      string        `yaml:"-"`
	UserAgent        string        `yaml:"user_agent"`
	Timeout          time.Duration `yaml:"timeout"`
	ProductHuntURL   string        `yaml:"producthunt_url"`
	GitHubURL        string        `yaml:"github_url"`
	HackerNewsURL    string        `yaml:"hackernews_url"`
	RedditURL        string        `yaml:"reddit_url"`
	DevHuntURL       string        `yaml:"devhunt_url"`
}

// ThresholdsConfig holds the per-source quality floors
type ThresholdsConfig struct {
	GitHubMinStars      int `yaml:"github_min_stars" json:"githubMinStars"`
	HackerNewsMinPoints int `yaml:"hackernews_min_points" json:"hackerNewsMinPoints"`
	RedditMinScore      int `yaml:"reddit_min_score" json:"redditMinScore"`
}

// PipelineConfig tunes classification batching and source pacing
type PipelineConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
	QueryDelay time.Duration `yaml:"query_delay"`
}

// LoggingConfig configures zap
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns the default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Catalog: CatalogConfig{
			Driver:         "sqlite",
			Path:           filepath.Join(home, ".toolscout", "catalog.db"),
			MaxConns:       4,
			SimpleProtocol: true,
		},
		Model: ModelConfig{
			Provider: "gemini",
			Name:     "gemini-2.5-flash-lite",
			Timeout:  60 * time.Second,
		},
		Sources: SourcesConfig{
			UserAgent:      "toolscout/1.0 (tool-discovery)",
			Timeout:        10 * time.Second,
			ProductHuntURL: "https://api.producthunt.com/v2/api/graphql",
			GitHubURL:      "https://api.github.com",
			HackerNewsURL:  "https://hn.algolia.com/api/v1",
			RedditURL:      "https://www.reddit.com",
			DevHuntURL:     "https://devhunt.org/api/week",
		},
		Thresholds: ThresholdsConfig{
			GitHubMinStars:      50,
			HackerNewsMinPoints: 10,
			RedditMinScore:      20,
		},
		Pipeline: PipelineConfig{
			BatchSize:  15,
			BatchDelay: 500 * time.Millisecond,
			QueryDelay: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load reads an optional YAML file over the defaults and applies environment
// overrides. An empty path or a missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, eris.Wrapf(err, "parse config %s", path)
			}
		case os.IsNotExist(err):
		default:
			return nil, eris.Wrapf(err, "read config %s", path)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	// Model key; Gemini wins when both are present
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Model.APIKey = key
		c.Model.Provider = "anthropic"
		if strings.HasPrefix(c.Model.Name, "gemini") {
			c.Model.Name = "claude-sonnet-4-20250514"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Model.APIKey = key
		c.Model.Provider = "gemini"
		if !strings.HasPrefix(c.Model.Name, "gemini") {
			c.Model.Name = "gemini-2.5-flash-lite"
		}
	}
	if name := os.Getenv("TOOLSCOUT_MODEL"); name != "" {
		c.Model.Name = name
	}

	c.Sources.ProductHuntToken = getenv("PRODUCTHUNT_TOKEN", c.Sources.ProductHuntToken)
	c.Sources.GitHubToken = getenv("GITHUB_TOKEN", c.Sources.GitHubToken)

	if path := os.Getenv("TOOLSCOUT_DB"); path != "" {
		c.Catalog.Path = path
	}
	for _, k := range []string{"DATABASE_URL", "SUPABASE_DB_URL"} {
		if dsn := os.Getenv(k); dsn != "" {
			c.Catalog.DSN = dsn
			c.Catalog.Driver = "postgres"
		}
	}
	c.Catalog.MaxConns = getenvInt("TOOLSCOUT_DB_MAX_CONNS", c.Catalog.MaxConns)

	c.Server.Addr = getenv("TOOLSCOUT_ADDR", c.Server.Addr)
	c.Logging.Level = getenv("TOOLSCOUT_LOG_LEVEL", c.Logging.Level)
	c.Pipeline.BatchSize = getenvInt("TOOLSCOUT_BATCH_SIZE", c.Pipeline.BatchSize)
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("unknown catalog driver %q (valid: sqlite, postgres)", c.Catalog.Driver)
	}
	switch c.Model.Provider {
	case "gemini", "anthropic":
	default:
		return eris.Errorf("unknown model provider %q (valid: gemini, anthropic)", c.Model.Provider)
	}
	if c.Pipeline.BatchSize <= 0 {
		return eris.New("pipeline.batch_size must be positive")
	}
	if c.Sources.Timeout <= 0 {
		return eris.New("sources.timeout must be positive")
	}
	if c.Model.Timeout <= 0 {
		return eris.New("model.timeout must be positive")
	}
	return nil
}

// ModelConfigured reports whether a model API key is available
func (c *Config) ModelConfigured() bool {
	return c.Model.APIKey != ""
}

// CatalogConfigured reports whether a catalog backend can be opened
func (c *Config) CatalogConfigured() bool {
	if c.Catalog.Driver == "postgres" {
		return c.Catalog.DSN != ""
	}
	return c.Catalog.Path != ""
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
