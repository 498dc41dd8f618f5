package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Notion connection
	NotionSecretKey string        `yaml:"notion_secret_key"`
	NotionAPIURL    string        `yaml:"notion_api_url"`
	NotionVersion   string        `yaml:"notion_version"`
	NotionPageURL   string        `yaml:"notion_page_url"`
	NotionRateLimit float64       `yaml:"notion_rate_limit"`
	NotionTimeout   time.Duration `yaml:"notion_timeout"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Conversion
	MaxDepth     int  `yaml:"max_depth"`
	AddTOC       bool `yaml:"add_toc"`
	HeadingShift int  `yaml:"heading_shift"`
	NumberLists  bool `yaml:"number_lists"`

	// Output
	OutputDir    string `yaml:"output_dir"`
	ManifestPath string `yaml:"manifest_path"`
	ChromeURL    string `yaml:"chrome_url"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`
}

func Default() Config {
	return Config{
		Port: "8090",

		NotionAPIURL:    "https://api.notion.com",
		NotionVersion:   "2022-06-28",
		NotionPageURL:   "https://www.notion.so",
		NotionRateLimit: 3,
		NotionTimeout:   30 * time.Second,

		LogLevel:  "info",
		LogFormat: "text",

		MaxDepth:     5,
		AddTOC:       true,
		HeadingShift: 1,

		OutputDir:    ".",
		ManifestPath: "blockmd.db",

		WorkerCount:  4,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB

		JobTTL: 1 * time.Hour,
	}
}

// Load starts from the defaults, applies the YAML file named by
// BLOCKMD_CONFIG when set, then applies environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("BLOCKMD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.NotionSecretKey = envOr("NOTION_SECRET_KEY", cfg.NotionSecretKey)
	cfg.NotionAPIURL = envOr("NOTION_API_URL", cfg.NotionAPIURL)
	cfg.NotionVersion = envOr("NOTION_VERSION", cfg.NotionVersion)
	cfg.NotionPageURL = envOr("NOTION_PAGE_URL", cfg.NotionPageURL)
	cfg.NotionRateLimit = envFloat("NOTION_RATE_LIMIT", cfg.NotionRateLimit)
	cfg.NotionTimeout = envDuration("NOTION_TIMEOUT", cfg.NotionTimeout)

	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)

	cfg.MaxDepth = envInt("MAX_DEPTH", cfg.MaxDepth)
	cfg.AddTOC = envBool("ADD_TOC", cfg.AddTOC)
	cfg.HeadingShift = envInt("HEADING_SHIFT", cfg.HeadingShift)
	cfg.NumberLists = envBool("NUMBER_LISTS", cfg.NumberLists)

	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.ManifestPath = envOr("MANIFEST_PATH", cfg.ManifestPath)
	cfg.ChromeURL = envOr("CHROME_URL", cfg.ChromeURL)

	cfg.APIKey = envOr("BLOCKMD_API_KEY", cfg.APIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

var logLevels = []any{"debug", "info", "warn", "warning", "error", "critical"}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.NotionAPIURL, validation.Required),
		validation.Field(&c.NotionVersion, validation.Required),
		validation.Field(&c.MaxDepth, validation.Min(0)),
		validation.Field(&c.HeadingShift, validation.Min(0)),
		validation.Field(&c.NotionRateLimit, validation.Min(0.0)),
		validation.Field(&c.LogLevel, validation.By(oneOfFold(logLevels))),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

// ValidateNotion checks the settings needed to talk to the Notion API.
func (c Config) ValidateNotion() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NotionSecretKey == "" {
		return fmt.Errorf("NOTION_SECRET_KEY is required")
	}
	return nil
}

// ValidateServer checks the settings needed by the HTTP service.
func (c Config) ValidateServer() error {
	if err := c.ValidateNotion(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("BLOCKMD_API_KEY is required")
	}
	return nil
}

func oneOfFold(allowed []any) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		return validation.Validate(strings.ToLower(s), validation.In(allowed...))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
