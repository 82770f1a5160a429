package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen       string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL      string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Public base URL used in generated RSS"`
		AuthPassword string        `yaml:"auth_password" json:"auth_password" jsonschema:"description=Basic auth password for the admin API (user admin), empty disables auth"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedrewriter.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=1,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=1,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule   ScheduleConfig   `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`
	LLM        LLMConfig        `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for article rewriting"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Feed, content and image extraction configuration"`
	Processing ProcessingConfig `yaml:"processing" json:"processing" jsonschema:"description=Dedup, filtering and formatting options"`
	Research   ResearchConfig   `yaml:"research" json:"research" jsonschema:"description=Enhanced mode research configuration"`
	Publisher  PublisherConfig  `yaml:"publisher" json:"publisher" jsonschema:"description=Publishing target configuration"`
	Journal    JournalConfig    `yaml:"journal" json:"journal" jsonschema:"description=Run journal configuration"`

	Feeds []Feed `yaml:"feeds" json:"feeds" jsonschema:"description=Feed configurations seeded into the store on first start"`
}

// Feed is a feed configuration as written in the config file
type Feed struct {
	URL      string        `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Category string        `yaml:"category" json:"category" jsonschema:"description=Category assigned to generated posts"`
	Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=60m,description=Minimal time between runs of this feed"`
	Prompt   string        `yaml:"prompt" json:"prompt" jsonschema:"description=Custom instruction prefix for the rewrite prompt"`
}

// ScheduleConfig holds scheduler settings
type ScheduleConfig struct {
	LockTTL                time.Duration `yaml:"lock_ttl" json:"lock_ttl" jsonschema:"default=25m,description=Expiry of the run lock"`
	MinTick                time.Duration `yaml:"min_tick" json:"min_tick" jsonschema:"default=1m,description=Lower bound for the tick interval"`
	ManualBypassesInterval *bool         `yaml:"manual_bypasses_interval" json:"manual_bypasses_interval" jsonschema:"default=true,description=Manual runs ignore per-feed intervals"`
	ManualBypassesPause    *bool         `yaml:"manual_bypasses_pause" json:"manual_bypasses_pause" jsonschema:"default=true,description=Manual runs work while paused"`
	MaxEntriesPerFeed      int           `yaml:"max_entries_per_feed" json:"max_entries_per_feed" jsonschema:"default=10,description=Entries examined per feed in one pass"`
	RunOnStart             bool          `yaml:"run_on_start" json:"run_on_start" jsonschema:"default=false,description=Run a cron tick right after start"`
}

// LLMConfig holds LLM configuration for article rewriting
type LLMConfig struct {
	Endpoint      string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.openai.com/v1,description=OpenAI-compatible API endpoint"`
	APIKey        string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model         string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	Temperature   float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.5,description=Temperature for response generation"`
	MaxTokens     int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=500,description=Maximum tokens in rewrite response, -1 for no cap"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Rewrite request timeout"`
	Language      string        `yaml:"language" json:"language" jsonschema:"enum=en,enum=id,default=en,description=Output language"`
	DefaultPrompt string        `yaml:"default_prompt" json:"default_prompt" jsonschema:"description=Instruction prefix used when a feed has no prompt"`
	Tags          struct {
		Enabled   *bool         `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Generate tags with a second call"`
		MaxTokens int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=50,description=Token cap for tag generation"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=20s,description=Tag request timeout"`
	} `yaml:"tags" json:"tags" jsonschema:"description=Tag generation settings"`
}

// ExtractionConfig holds feed, content and image extraction settings
type ExtractionConfig struct {
	FeedTimeout      time.Duration `yaml:"feed_timeout" json:"feed_timeout" jsonschema:"default=20s,description=Feed fetch timeout"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Article page fetch timeout"`
	ImageTimeout     time.Duration `yaml:"image_timeout" json:"image_timeout" jsonschema:"default=30s,description=Image download timeout"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for HTTP requests"`
	MinTextLength    int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum feed text length before the page is fetched"`
	ImageSelector    string        `yaml:"image_selector" json:"image_selector" jsonschema:"description=Custom CSS selector tried first for page images"`
	ImageInsecureTLS bool          `yaml:"image_insecure_tls" json:"image_insecure_tls" jsonschema:"default=false,description=Skip TLS verification for image downloads"`
	Trafilatura      *bool         `yaml:"trafilatura" json:"trafilatura" jsonschema:"default=true,description=Use trafilatura as the final extraction fallback"`
}

// ProcessingConfig holds dedup, filter and formatting options
type ProcessingConfig struct {
	IgnoreProcessedURLs  *bool  `yaml:"ignore_processed_urls" json:"ignore_processed_urls" jsonschema:"default=true,description=Skip entries whose URL was already processed"`
	IgnoreNoImage        bool   `yaml:"ignore_no_image" json:"ignore_no_image" jsonschema:"default=false,description=Skip entries without an image"`
	EnableTOC            bool   `yaml:"enable_toc" json:"enable_toc" jsonschema:"default=false,description=Generate table of contents"`
	KeywordFilter        string `yaml:"keyword_filter" json:"keyword_filter" jsonschema:"description=Include keywords separated by newlines"`
	ExcludeKeywordFilter string `yaml:"exclude_keyword_filter" json:"exclude_keyword_filter" jsonschema:"description=Exclude keywords separated by commas"`
	MaxProcessedURLs     int    `yaml:"max_processed_urls" json:"max_processed_urls" jsonschema:"default=5000,description=Processed URLs kept per feed, 0 for unbounded"`
}

// ResearchConfig holds enhanced mode settings
type ResearchConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Collect outbound link excerpts before rewriting"`
	MaxLinks   int           `yaml:"max_links" json:"max_links" jsonschema:"default=3,description=Maximum outbound links fetched per article"`
	MaxExcerpt int           `yaml:"max_excerpt" json:"max_excerpt" jsonschema:"default=1000,description=Maximum excerpt size per source in characters"`
	CacheTTL   time.Duration `yaml:"cache_ttl" json:"cache_ttl" jsonschema:"default=24h,description=Cache lifetime of collected research"`
}

// PublisherConfig selects and configures the publishing target
type PublisherConfig struct {
	Type      string `yaml:"type" json:"type" jsonschema:"enum=local,enum=wordpress,default=local,description=Publisher type"`
	WordPress struct {
		URL         string        `yaml:"url" json:"url" jsonschema:"description=WordPress site URL"`
		Username    string        `yaml:"username" json:"username" jsonschema:"description=WordPress user"`
		AppPassword string        `yaml:"app_password" json:"app_password" jsonschema:"description=WordPress application password"`
		Status      string        `yaml:"status" json:"status" jsonschema:"default=publish,description=Status of created posts"`
		Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=REST API timeout"`
	} `yaml:"wordpress" json:"wordpress" jsonschema:"description=WordPress REST publisher"`
	Local struct {
		ImagesDir string `yaml:"images_dir" json:"images_dir" jsonschema:"default=images,description=Directory for downloaded featured images"`
	} `yaml:"local" json:"local" jsonschema:"description=Local sqlite publisher"`
}

// JournalConfig holds run journal settings
type JournalConfig struct {
	MaxEntries  int           `yaml:"max_entries" json:"max_entries" jsonschema:"default=5000,description=Entries kept before the oldest half is pruned"`
	DedupWindow time.Duration `yaml:"dedup_window" json:"dedup_window" jsonschema:"default=60s,description=Identical messages within this window are dropped"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// database, single connection keeps sqlite writers serialized
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:feedrewriter.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 1
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 1
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// schedule
	if cfg.Schedule.LockTTL == 0 {
		cfg.Schedule.LockTTL = 25 * time.Minute
	}
	if cfg.Schedule.MinTick == 0 {
		cfg.Schedule.MinTick = time.Minute
	}
	if cfg.Schedule.ManualBypassesInterval == nil {
		cfg.Schedule.ManualBypassesInterval = boolPtr(true)
	}
	if cfg.Schedule.ManualBypassesPause == nil {
		cfg.Schedule.ManualBypassesPause = boolPtr(true)
	}
	if cfg.Schedule.MaxEntriesPerFeed == 0 {
		cfg.Schedule.MaxEntriesPerFeed = 10
	}

	// llm
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.5
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.Language == "" {
		cfg.LLM.Language = "en"
	}
	if cfg.LLM.Tags.Enabled == nil {
		cfg.LLM.Tags.Enabled = boolPtr(true)
	}
	if cfg.LLM.Tags.MaxTokens == 0 {
		cfg.LLM.Tags.MaxTokens = 50
	}
	if cfg.LLM.Tags.Timeout == 0 {
		cfg.LLM.Tags.Timeout = 20 * time.Second
	}

	// extraction
	if cfg.Extraction.FeedTimeout == 0 {
		cfg.Extraction.FeedTimeout = 20 * time.Second
	}
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.ImageTimeout == 0 {
		cfg.Extraction.ImageTimeout = 30 * time.Second
	}
	if cfg.Extraction.MinTextLength == 0 {
		cfg.Extraction.MinTextLength = 100
	}
	if cfg.Extraction.Trafilatura == nil {
		cfg.Extraction.Trafilatura = boolPtr(true)
	}

	// processing
	if cfg.Processing.IgnoreProcessedURLs == nil {
		cfg.Processing.IgnoreProcessedURLs = boolPtr(true)
	}
	if cfg.Processing.MaxProcessedURLs == 0 {
		cfg.Processing.MaxProcessedURLs = 5000
	}

	// research
	if cfg.Research.MaxLinks == 0 {
		cfg.Research.MaxLinks = 3
	}
	if cfg.Research.MaxExcerpt == 0 {
		cfg.Research.MaxExcerpt = 1000
	}
	if cfg.Research.CacheTTL == 0 {
		cfg.Research.CacheTTL = 24 * time.Hour
	}

	// publisher
	if cfg.Publisher.Type == "" {
		cfg.Publisher.Type = "local"
	}
	if cfg.Publisher.WordPress.Status == "" {
		cfg.Publisher.WordPress.Status = "publish"
	}
	if cfg.Publisher.WordPress.Timeout == 0 {
		cfg.Publisher.WordPress.Timeout = 30 * time.Second
	}
	if cfg.Publisher.Local.ImagesDir == "" {
		cfg.Publisher.Local.ImagesDir = "images"
	}

	// journal
	if cfg.Journal.MaxEntries == 0 {
		cfg.Journal.MaxEntries = 5000
	}
	if cfg.Journal.DedupWindow == 0 {
		cfg.Journal.DedupWindow = 60 * time.Second
	}

	// feeds
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Interval == 0 {
			cfg.Feeds[i].Interval = 60 * time.Minute
		}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.Language != "en" && cfg.LLM.Language != "id" {
		return fmt.Errorf("llm.language must be en or id, got %q", cfg.LLM.Language)
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.LockTTL < time.Minute {
		return fmt.Errorf("schedule.lock_ttl must be at least 1 minute")
	}
	if cfg.Processing.MaxProcessedURLs < 0 {
		return fmt.Errorf("processing.max_processed_urls must be non-negative")
	}

	switch cfg.Publisher.Type {
	case "local":
	case "wordpress":
		if cfg.Publisher.WordPress.URL == "" {
			return fmt.Errorf("publisher.wordpress.url is required for wordpress publisher")
		}
		if cfg.Publisher.WordPress.Username == "" || cfg.Publisher.WordPress.AppPassword == "" {
			return fmt.Errorf("publisher.wordpress credentials are required for wordpress publisher")
		}
	default:
		return fmt.Errorf("unknown publisher type %q", cfg.Publisher.Type)
	}

	for i, f := range cfg.Feeds {
		u, err := url.Parse(f.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("feeds[%d]: invalid url %q", i, f.URL)
		}
		if f.Interval < time.Minute {
			return fmt.Errorf("feeds[%d]: interval must be at least 1 minute", i)
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the whole configuration
func (c *Config) GetFullConfig() *Config {
	return c
}

func boolPtr(b bool) *bool { return &b }
