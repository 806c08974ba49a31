package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FeaturedSelector/internal/gate"
	"FeaturedSelector/internal/pricegate"
	"FeaturedSelector/internal/selection"
	"FeaturedSelector/internal/validation"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "FEATURED_SELECTOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "FEATURED_LOG_LEVEL"
	pickEnv           = "FEATURED_PICK"
	allowUnknownEnv   = "FEATURED_ALLOW_UNKNOWN_PRICE"
	subredditsEnv     = "FEATURED_SUBREDDITS"
)

// DefaultSubreddits feed the reddit site when the config names none.
var DefaultSubreddits = []string{
	"Damnthatsinteresting",
	"oddlysatisfying",
	"InternetIsBeautiful",
	"DesignPorn",
	"ShutUpAndTakeMyMoney",
	"gadgets",
	"BuyItForLife",
}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Storage       StorageConfig      `yaml:"storage"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Vocabulary    VocabularyConfig   `yaml:"vocabulary"`
	Selection     selection.Config   `yaml:"selection"`
	Rules         pricegate.Rules    `yaml:"rules"`
	Gate          gate.Policy        `yaml:"gate"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DatabaseConfig describes the optional Postgres audit store. Empty DSN disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// StorageConfig points at the JSON files shared with the site build.
type StorageConfig struct {
	ItemsPath    string `yaml:"itemsPath" validate:"required"`
	FeaturedPath string `yaml:"featuredPath" validate:"required"`
	ApprovedPath string `yaml:"approvedPath"`
}

// SchedulerConfig drives the long-running serve mode.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig names the node-exporter textfile. Empty disables metrics.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// VocabularyConfig optionally replaces the embedded vocabulary.
type VocabularyConfig struct {
	Path string `yaml:"path"`
}

// SiteConfig describes a single source with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig is one endpoint of a site, e.g. a subreddit. URL may be left
// empty when the scanner can derive it from Name.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads the YAML file named by FEATURED_SELECTOR_CONFIG (if set) over the
// defaults, applies environment overrides and validates the result.
func Load() (Config, error) {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path. An empty path means defaults only.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		// yaml.v3 leaves fields absent from the file untouched.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}
	cfg.Gate.FallbackJudgments = cfg.Selection.FallbackJudgments

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section that carries validation tags.
func (c Config) Validate() error {
	if err := validation.Struct("config", c.Logging); err != nil {
		return err
	}
	if err := validation.Struct("config", c.Storage); err != nil {
		return err
	}
	if err := c.Selection.Validate(); err != nil {
		return err
	}
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if err := c.Gate.Validate(); err != nil {
		return err
	}
	for _, site := range c.Sites {
		if site.Name == "" || site.Scanner == "" {
			return fmt.Errorf("config: every site needs a name and a scanner")
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(pickEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q is not an integer", pickEnv, v)
		}
		c.Selection.Pick = n
	}

	if v := os.Getenv(allowUnknownEnv); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q is not a boolean", allowUnknownEnv, v)
		}
		c.Rules.AllowUnknown = b
	}

	if v := os.Getenv(subredditsEnv); v != "" {
		c.Sites = []SiteConfig{redditSite(strings.Split(v, ","))}
	}
	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
		c.Scheduler.Timezone = defaultTimezone
	}
	c.Scheduler.location = loc
}

func redditSite(subs []string) SiteConfig {
	site := SiteConfig{Name: "reddit", Scanner: "reddit"}
	for _, sub := range subs {
		if sub = strings.TrimSpace(sub); sub != "" {
			site.Categories = append(site.Categories, CategoryConfig{Name: sub})
		}
	}
	return site
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			ItemsPath:    "data/posts.json",
			FeaturedPath: "data/featured.json",
		},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		Selection: selection.DefaultConfig(),
		Rules:     pricegate.DefaultRules(),
		Gate:      gate.DefaultPolicy(),
		Sites:     []SiteConfig{redditSite(DefaultSubreddits)},
	}
}
