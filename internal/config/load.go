package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables use the PRECEDENT_ prefix with underscores in
// place of dots (PRECEDENT_DATABASE_URL, PRECEDENT_WORKER_CRON_SECRET, ...)
// and take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; absence is fine, a malformed file is not.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PRECEDENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults (the database URL, secrets) must be bound explicitly
	// or Unmarshal never sees their environment values.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configKeys lists every key the Config struct reads. Each one is bound to
// its PRECEDENT_ environment variable in Load.
var configKeys = []string{
	"server.port",
	"server.log_level",
	"database.url",
	"database.migrations_dir",
	"worker.cron_secret",
	"worker.batch_size",
	"worker.max_attempts",
	"worker.retry_delay_seconds",
	"worker.job_timeout_seconds",
	"worker.call_timeout_seconds",
	"worker.chunk_max_chars",
	"worker.chunk_overlap",
	"worker.retrieval_top_k",
	"llm.gemini_api_key",
	"llm.model_name",
	"llm.embedding_model",
	"llm.embedding_dims",
	"llm.temperature",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"storage.bucket",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("worker.batch_size", 3)
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.retry_delay_seconds", 60)
	v.SetDefault("worker.job_timeout_seconds", 120)
	v.SetDefault("worker.call_timeout_seconds", 30)
	v.SetDefault("worker.chunk_max_chars", 2500)
	v.SetDefault("worker.chunk_overlap", 200)
	v.SetDefault("worker.retrieval_top_k", 12)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.embedding_model", "text-embedding-004")
	v.SetDefault("llm.embedding_dims", 768)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("storage.bucket", "case-files")
}

// validate checks struct tags plus the cross-field constraints the tags
// cannot express.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Worker.ChunkOverlap >= cfg.Worker.ChunkMaxChars {
		return fmt.Errorf(
			"invalid configuration: worker.chunk_overlap (%d) must be smaller than worker.chunk_max_chars (%d)",
			cfg.Worker.ChunkOverlap, cfg.Worker.ChunkMaxChars,
		)
	}

	return nil
}
