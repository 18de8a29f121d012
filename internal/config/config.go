package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"
	EnvPrefix         = "PARODYBOT_"

	DefaultAccountDelay   = 15 * time.Minute
	DefaultTimeout        = 20 * time.Second
	DefaultFetchWait      = time.Minute
	DefaultNitterInstance = "nitter.privacyredirect.com"
	DefaultAttempts       = 3
	DefaultRateLimitDelay = 30 * time.Second
	DefaultMaxTokens      = 120
	DefaultTemperature    = 1.3
	DefaultMaxLength      = 280
	DefaultMinLength      = 10
	DefaultMaxTags        = 2
	DefaultStorePath      = "used_tweets.txt"
	DefaultLogFile        = "log.txt"
	DefaultLogLevel       = "info"
	DefaultEventsTopic    = "parodies"

	// PostLimit is the platform ceiling for a published payload.
	PostLimit = 280
)

type Config struct {
	Accounts  []string        `koanf:"accounts"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Scraper   ScraperConfig   `koanf:"scraper"`
	Generator GeneratorConfig `koanf:"generator"`
	Publisher PublisherConfig `koanf:"publisher"`
	Store     StoreConfig     `koanf:"store"`
	Events    EventsConfig    `koanf:"events"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
}

type ScheduleConfig struct {
	AccountDelay time.Duration `koanf:"account_delay"`
	CycleDelay   time.Duration `koanf:"cycle_delay"`
}

type ScraperConfig struct {
	Backend       string        `koanf:"backend"`
	Instance      string        `koanf:"instance"`
	BaseURL       string        `koanf:"base_url"`
	BearerToken   string        `koanf:"bearer_token"`
	Timeout       time.Duration `koanf:"timeout"`
	Retries       int           `koanf:"retries"`
	RateLimitWait time.Duration `koanf:"rate_limit_wait"`
}

type GeneratorConfig struct {
	Backend        string        `koanf:"backend"`
	Model          string        `koanf:"model"`
	Endpoint       string        `koanf:"endpoint"`
	APIKeys        []string      `koanf:"api_keys"`
	Prompt         string        `koanf:"prompt"`
	MaxTokens      int           `koanf:"max_tokens"`
	Temperature    float64       `koanf:"temperature"`
	Attempts       int           `koanf:"attempts"`
	RateLimitDelay time.Duration `koanf:"rate_limit_delay"`
	MaxLength      int           `koanf:"max_length"`
	MinLength      int           `koanf:"min_length"`
	Timeout        time.Duration `koanf:"timeout"`
}

type PublisherConfig struct {
	Backend  string         `koanf:"backend"`
	Quote    bool           `koanf:"quote"`
	Tags     []string       `koanf:"tags"`
	MaxTags  int            `koanf:"max_tags"`
	Timeout  time.Duration  `koanf:"timeout"`
	X        XConfig        `koanf:"x"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type XConfig struct {
	BaseURL      string `koanf:"base_url"`
	TokenURL     string `koanf:"token_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RefreshToken string `koanf:"refresh_token"`
	AccessToken  string `koanf:"access_token"`
}

type TelegramConfig struct {
	Token   string   `koanf:"token"`
	ChatIDs []string `koanf:"chat_ids"`
}

type StoreConfig struct {
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	DSN       string `koanf:"dsn"`
	RedisAddr string `koanf:"redis_addr"`
}

type EventsConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Load reads the YAML file at path, overlays PARODYBOT_* env vars, applies
// defaults and validates. A missing file is fine when env supplies the rest.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(DefaultEnvFile)

	k := koanf.New(".")

	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf(cfg)); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// unmarshalConf adds comma splitting so list keys can come from env strings.
func unmarshalConf(out *Config) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           out,
			TagName:          "koanf",
		},
	}
}

// envKey maps PARODYBOT_GENERATOR__API_KEYS to generator.api_keys.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func applyDefaults(cfg *Config) {
	accounts := cfg.Accounts[:0]
	for _, a := range cfg.Accounts {
		a = strings.TrimPrefix(strings.TrimSpace(a), "@")
		if a != "" {
			accounts = append(accounts, a)
		}
	}
	cfg.Accounts = accounts

	if cfg.Schedule.AccountDelay == 0 {
		cfg.Schedule.AccountDelay = DefaultAccountDelay
	}

	if cfg.Scraper.Backend == "" {
		cfg.Scraper.Backend = "nitter"
	}
	if cfg.Scraper.Instance == "" {
		cfg.Scraper.Instance = DefaultNitterInstance
	}
	if cfg.Scraper.Timeout == 0 {
		cfg.Scraper.Timeout = DefaultTimeout
	}
	if cfg.Scraper.RateLimitWait == 0 {
		cfg.Scraper.RateLimitWait = DefaultFetchWait
	}

	g := &cfg.Generator
	if g.Backend == "" {
		g.Backend = "huggingface"
	}
	if g.Attempts == 0 {
		g.Attempts = DefaultAttempts
	}
	if g.RateLimitDelay == 0 {
		g.RateLimitDelay = DefaultRateLimitDelay
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = DefaultMaxTokens
	}
	if g.Temperature == 0 {
		g.Temperature = DefaultTemperature
	}
	if g.MaxLength == 0 {
		g.MaxLength = DefaultMaxLength
	}
	if g.MinLength == 0 {
		g.MinLength = DefaultMinLength
	}
	if g.Timeout == 0 {
		g.Timeout = 60 * time.Second
	}

	if cfg.Publisher.Backend == "" {
		cfg.Publisher.Backend = "x"
	}
	if cfg.Publisher.MaxTags == 0 {
		cfg.Publisher.MaxTags = DefaultMaxTags
	}
	if cfg.Publisher.Timeout == 0 {
		cfg.Publisher.Timeout = DefaultTimeout
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "file"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Driver {
		case "json":
			cfg.Store.Path = "used_tweets.json"
		case "sqlite":
			cfg.Store.Path = "parodybot.db"
		default:
			cfg.Store.Path = DefaultStorePath
		}
	}

	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.File == "" {
		cfg.Log.File = DefaultLogFile
	}
}

func validate(cfg *Config) error {
	if len(cfg.Accounts) == 0 {
		return errors.New("accounts: at least one account is required")
	}

	switch cfg.Scraper.Backend {
	case "nitter", "xpage":
	case "xapi":
		if cfg.Scraper.BearerToken == "" {
			return errors.New("scraper.bearer_token is required for the xapi backend")
		}
	default:
		return fmt.Errorf("scraper.backend: unknown backend %q (want nitter, xapi or xpage)", cfg.Scraper.Backend)
	}
	if cfg.Scraper.Retries < 0 || cfg.Scraper.Retries > 3 {
		return fmt.Errorf("scraper.retries: %d out of range 0..3", cfg.Scraper.Retries)
	}

	g := cfg.Generator
	switch g.Backend {
	case "huggingface", "openrouter", "openai", "gemini":
	default:
		return fmt.Errorf("generator.backend: unknown backend %q (want huggingface, openrouter, openai or gemini)", g.Backend)
	}
	if len(g.APIKeys) == 0 {
		return errors.New("generator.api_keys: at least one key is required")
	}
	if g.Attempts < 1 || g.Attempts > 10 {
		return fmt.Errorf("generator.attempts: %d out of range 1..10", g.Attempts)
	}
	if g.MaxLength < 1 || g.MaxLength > PostLimit {
		return fmt.Errorf("generator.max_length: %d out of range 1..%d", g.MaxLength, PostLimit)
	}
	if g.MinLength >= g.MaxLength {
		return fmt.Errorf("generator.min_length: %d must be below max_length %d", g.MinLength, g.MaxLength)
	}

	switch cfg.Publisher.Backend {
	case "x":
		x := cfg.Publisher.X
		if x.AccessToken == "" && (x.RefreshToken == "" || x.ClientID == "") {
			return errors.New("publisher.x: access_token or client_id + refresh_token is required")
		}
	case "telegram":
		if cfg.Publisher.Telegram.Token == "" || len(cfg.Publisher.Telegram.ChatIDs) == 0 {
			return errors.New("publisher.telegram: token and chat_ids are required")
		}
	default:
		return fmt.Errorf("publisher.backend: unknown backend %q (want x or telegram)", cfg.Publisher.Backend)
	}

	switch cfg.Store.Driver {
	case "file", "json", "sqlite":
	case "postgres":
		if cfg.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	case "redis":
		if cfg.Store.RedisAddr == "" {
			return errors.New("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q (want file, json, sqlite, postgres or redis)", cfg.Store.Driver)
	}

	return nil
}
