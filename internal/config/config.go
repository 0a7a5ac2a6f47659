package config

import (
	"log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "OLYMPIA_CONFIG"
	envPrefix     = "OLYMPIA"
)

// Config holds high-level settings required across the application.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Store   StoreConfig   `yaml:"store"`
	Scan    ScanConfig    `yaml:"scan"`
	Forum   ForumConfig   `yaml:"forum"`
	Bus     BusConfig     `yaml:"bus"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the external game site and the ambient session used
// against it. Authentication itself is out of scope: the cookies of an
// already-authenticated browsing session are supplied here and attached to
// every fetch.
type SiteConfig struct {
	BaseURL        string            `yaml:"baseUrl" envconfig:"SITE_BASE_URL"`
	SessionCookies map[string]string `yaml:"sessionCookies" envconfig:"SITE_SESSION_COOKIES"`
	TimeoutSeconds int               `yaml:"timeoutSeconds" envconfig:"SITE_TIMEOUT_SECONDS"`
	RequestsPerSec float64           `yaml:"requestsPerSec" envconfig:"SITE_REQUESTS_PER_SEC"`
}

// StoreConfig describes the remote tracker store's ingestion API.
type StoreConfig struct {
	BaseURL        string `yaml:"baseUrl" envconfig:"STORE_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" envconfig:"STORE_TIMEOUT_SECONDS"`
}

// ScanConfig parameterizes the id-space enumeration.
type ScanConfig struct {
	OriginID   int `yaml:"originId" envconfig:"SCAN_ORIGIN_ID"`
	MaxRetries int `yaml:"maxRetries" envconfig:"SCAN_MAX_RETRIES"`
}

// ForumConfig maps crawlable section labels to the header text rendered on
// the forum index page.
type ForumConfig struct {
	Sections map[string]string `yaml:"sections" envconfig:"FORUM_SECTIONS"`
}

// BusConfig bounds cross-context request/response exchanges. A full scrape
// returns as a single response, so the ceiling is generous.
type BusConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds" envconfig:"BUS_TIMEOUT_SECONDS"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Timeout resolves the configured site request timeout.
func (s SiteConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Timeout resolves the configured store request timeout.
func (s StoreConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Timeout resolves the configured bus response deadline.
func (b BusConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		log.Printf("config: env overrides: %v", err)
	}

	cfg.fillGaps()
	return cfg
}

func (c *Config) fillGaps() {
	defaults := defaultConfig()

	if c.Site.BaseURL == "" {
		c.Site.BaseURL = defaults.Site.BaseURL
	}
	if c.Site.TimeoutSeconds <= 0 {
		c.Site.TimeoutSeconds = defaults.Site.TimeoutSeconds
	}
	if c.Site.RequestsPerSec <= 0 {
		c.Site.RequestsPerSec = defaults.Site.RequestsPerSec
	}
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = defaults.Store.BaseURL
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = defaults.Store.TimeoutSeconds
	}
	if c.Scan.MaxRetries <= 0 {
		c.Scan.MaxRetries = defaults.Scan.MaxRetries
	}
	if c.Bus.TimeoutSeconds <= 0 {
		c.Bus.TimeoutSeconds = defaults.Bus.TimeoutSeconds
	}
	if len(c.Forum.Sections) == 0 {
		c.Forum.Sections = defaults.Forum.Sections
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

func defaultConfig() Config {
	return Config{
		Site: SiteConfig{
			BaseURL:        "https://age-of-olympia.net",
			TimeoutSeconds: 20,
			RequestsPerSec: 2,
		},
		Store: StoreConfig{
			BaseURL:        "http://localhost:3000",
			TimeoutSeconds: 15,
		},
		Scan: ScanConfig{
			OriginID:   0,
			MaxRetries: 4,
		},
		Forum: ForumConfig{
			Sections: map[string]string{
				"private": "Forums Privés",
				"rp":      "Forums RP",
			},
		},
		Bus: BusConfig{
			TimeoutSeconds: 600,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
