package config

// Config holds all application configuration.
// It organizes settings into logical groups and is constructed once in main,
// then passed explicitly into every component that needs it. There is no
// package-level configuration state.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	// MigrationsDir is the directory containing goose SQL migrations,
	// relative to the working directory of the process.
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// WorkerConfig contains the settings for the job processing worker.
type WorkerConfig struct {
	// CronSecret authenticates calls to the worker entrypoint. It may be
	// supplied by the caller either as the x-cron-secret header or as the
	// token query parameter.
	CronSecret string `mapstructure:"cron_secret" validate:"required,min=16"`

	// BatchSize is the maximum number of jobs claimed per invocation.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// MaxAttempts is the number of transient failures after which a job is
	// marked terminally failed.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gt=0"`

	// RetryDelaySeconds is the fixed delay before a requeued job becomes
	// eligible for claiming again.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"required,gt=0"`

	// JobTimeoutSeconds bounds the total execution time of a single job.
	JobTimeoutSeconds int `mapstructure:"job_timeout_seconds" validate:"required,gt=0"`

	// CallTimeoutSeconds bounds each outbound network call a handler makes
	// (blob download, embedding request, generation request, similarity search).
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds" validate:"required,gt=0"`

	// ChunkMaxChars and ChunkOverlap control document windowing. Overlap must
	// be strictly smaller than the window so the chunker makes forward progress.
	ChunkMaxChars int `mapstructure:"chunk_max_chars" validate:"required,gt=0"`
	ChunkOverlap  int `mapstructure:"chunk_overlap"   validate:"gte=0"`

	// RetrievalTopK is the number of context snippets requested per retrieval.
	RetrievalTopK int `mapstructure:"retrieval_top_k" validate:"required,gt=0"`
}

// LLMConfig contains all generative model and embedding settings.
type LLMConfig struct {
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	EmbeddingModel    string  `mapstructure:"embedding_model"     validate:"required"`
	EmbeddingDims     int     `mapstructure:"embedding_dims"      validate:"required,gt=0"`
	Temperature       float32 `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// StorageConfig contains blob storage settings.
type StorageConfig struct {
	// Bucket is the bucket holding uploaded case files, addressed by the
	// storage_path recorded on each document row.
	Bucket string `mapstructure:"bucket" validate:"required"`
}
