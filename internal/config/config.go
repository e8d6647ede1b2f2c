package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Chat      ChatConfig      `yaml:"chat" mapstructure:"chat"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Scraper   ScraperConfig   `yaml:"scraper" mapstructure:"scraper"`
	RunLog    RunLogConfig    `yaml:"runlog" mapstructure:"runlog"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CatalogConfig locates the scraped data tree.
type CatalogConfig struct {
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"`
	SynonymsFile string `yaml:"synonyms_file" mapstructure:"synonyms_file"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	Model        string `yaml:"model" mapstructure:"model"`
	MaxTokens    int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxBatchSize int    `yaml:"max_batch_size" mapstructure:"max_batch_size"`
}

// ChatConfig configures the course advisor chatbot.
type ChatConfig struct {
	MaxCourses int    `yaml:"max_courses" mapstructure:"max_courses"`
	MaxHistory int    `yaml:"max_history" mapstructure:"max_history"`
	Fallback   string `yaml:"fallback" mapstructure:"fallback"`
}

// EnrichConfig configures bullet point generation over the catalogue.
type EnrichConfig struct {
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// ScraperConfig names the external scraper process the scrape command
// launches. The scraper itself lives outside this repo.
type ScraperConfig struct {
	Command     string   `yaml:"command" mapstructure:"command"`
	Args        []string `yaml:"args" mapstructure:"args"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RunLogConfig configures the local run history database.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COURSEFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.data_dir", "scraped_data")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1000)
	v.SetDefault("anthropic.max_batch_size", 100)
	v.SetDefault("chat.max_courses", 7)
	v.SetDefault("chat.max_history", 10)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.requests_per_sec", 2.0)
	v.SetDefault("scraper.command", "python3")
	v.SetDefault("scraper.args", []string{"scraper/main.py"})
	v.SetDefault("scraper.timeout_secs", 3600)
	v.SetDefault("runlog.path", "coursefinder.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command actually needs. Mode is the command
// name; serve covers the full API surface, enrich and chat only need the
// Anthropic side, scrape only the external scraper.
func (c *Config) Validate(mode string) error {
	var problems []string

	common := func() {
		if c.Catalog.DataDir == "" {
			problems = append(problems, "catalog.data_dir is required")
		}
	}

	switch mode {
	case "serve":
		common()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Chat.MaxCourses < 1 {
			problems = append(problems, "chat.max_courses must be >= 1")
		}
	case "enrich":
		common()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if c.Enrich.Concurrency < 1 || c.Enrich.Concurrency > 50 {
			problems = append(problems, "enrich.concurrency must be between 1 and 50")
		}
		if c.Enrich.RequestsPerSec <= 0 {
			problems = append(problems, "enrich.requests_per_sec must be > 0")
		}
	case "chat":
		common()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "scrape":
		common()
		if c.Scraper.Command == "" {
			problems = append(problems, "scraper.command is required")
		}
	case "search", "prune", "merge":
		common()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
