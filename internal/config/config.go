package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "PAPERDIGEST_CONFIG"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	smtpUsernameEnv  = "SMTP_USERNAME"
	smtpPasswordEnv  = "SMTP_PASSWORD"
	smtpRecipientEnv = "SMTP_RECIPIENT"
	historyPathEnv   = "PAPERDIGEST_HISTORY"
	archivePathEnv   = "PAPERDIGEST_ARCHIVE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Arxiv     ArxivConfig     `yaml:"arxiv"`
	Filter    FilterConfig    `yaml:"filter"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	History   HistoryConfig   `yaml:"history"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ArxivConfig describes the arXiv API query endpoint.
type ArxivConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	Query      string `yaml:"query"`
	MaxResults int    `yaml:"maxResults"`
}

// FilterConfig bounds candidate admission and history growth per run.
type FilterConfig struct {
	WindowDays        int `yaml:"windowDays"`
	AnalysisCap       int `yaml:"analysisCap"`
	RecommendationCap int `yaml:"recommendationCap"`
}

// Window resolves the admission window as a duration.
func (f FilterConfig) Window() time.Duration {
	return time.Duration(f.WindowDays) * 24 * time.Hour
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SMTPConfig wires all data required to deliver digests by email.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Recipient string `yaml:"recipient"`
}

// Configured reports whether delivery credentials are complete; the
// notifier skips sending when they are not.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.Recipient != ""
}

// HistoryConfig locates the persisted recommendation history.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig locates the optional sqlite run archive; empty disables it.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines the recurring run interval; zero means one-shot.
type SchedulerConfig struct {
	IntervalHours int `yaml:"intervalHours"`
}

// Interval resolves the scheduler interval as a duration.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.SMTP.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.SMTP.Password = v
	}

	if v := os.Getenv(smtpRecipientEnv); v != "" {
		c.SMTP.Recipient = v
	}

	if v := os.Getenv(historyPathEnv); v != "" {
		c.History.Path = v
	}

	if v := os.Getenv(archivePathEnv); v != "" {
		c.Archive.Path = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Arxiv.BaseURL != "" {
		base.Arxiv.BaseURL = override.Arxiv.BaseURL
	}
	if override.Arxiv.Query != "" {
		base.Arxiv.Query = override.Arxiv.Query
	}
	if override.Arxiv.MaxResults > 0 {
		base.Arxiv.MaxResults = override.Arxiv.MaxResults
	}

	if override.Filter.WindowDays > 0 {
		base.Filter.WindowDays = override.Filter.WindowDays
	}
	if override.Filter.AnalysisCap > 0 {
		base.Filter.AnalysisCap = override.Filter.AnalysisCap
	}
	if override.Filter.RecommendationCap > 0 {
		base.Filter.RecommendationCap = override.Filter.RecommendationCap
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}

	if override.SMTP.Host != "" {
		base.SMTP.Host = override.SMTP.Host
	}
	if override.SMTP.Port > 0 {
		base.SMTP.Port = override.SMTP.Port
	}
	if override.SMTP.Username != "" {
		base.SMTP.Username = override.SMTP.Username
	}
	if override.SMTP.Password != "" {
		base.SMTP.Password = override.SMTP.Password
	}
	if override.SMTP.Recipient != "" {
		base.SMTP.Recipient = override.SMTP.Recipient
	}

	if override.History.Path != "" {
		base.History.Path = override.History.Path
	}

	if override.Archive.Path != "" {
		base.Archive.Path = override.Archive.Path
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Arxiv: ArxivConfig{
			BaseURL:    "https://export.arxiv.org/api/query",
			Query:      `all:"tool use" OR all:"function calling" OR all:"reinforcement learning" OR all:"agent"`,
			MaxResults: 50,
		},
		Filter: FilterConfig{
			WindowDays:        4,
			AnalysisCap:       15,
			RecommendationCap: 5,
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
			Model:    "gemini-2.5-flash",
			APIKey:   "",
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 465,
		},
		History: HistoryConfig{Path: "sent_papers_history.json"},
		Logging: LoggingConfig{Level: "info"},
	}
}
