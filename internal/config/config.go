package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names an optional YAML file applied between defaults and env.
const ConfigPathEnv = "INGESTER_CONFIG"

type Config struct {
	Feed    FeedConfig    `yaml:"feed" envPrefix:"FEED_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	HTTP    HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
	Render  RenderConfig  `yaml:"render" envPrefix:"RENDER_"`
}

type FeedConfig struct {
	URL            string        `yaml:"url" env:"URL"`
	RestURL        string        `yaml:"rest_url" env:"REST_URL"`
	Symbol         string        `yaml:"symbol" env:"SYMBOL"`
	Levels         int           `yaml:"levels" env:"LEVELS"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	OnPriceMissing string        `yaml:"on_price_not_found" env:"ON_PRICE_NOT_FOUND"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PRETTY"`
}

type HTTPConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Addr      string `yaml:"addr" env:"ADDR"`
	JWTSecret string `yaml:"-" env:"JWT_SECRET"`
}

type RenderConfig struct {
	Console bool `yaml:"console" env:"CONSOLE"`
}

func defaultConfig() Config {
	var c Config
	c.Feed.URL = "wss://api-pub.bitfinex.com/ws/2"
	c.Feed.RestURL = "https://api-pub.bitfinex.com"
	c.Feed.Symbol = "tETHUSD"
	c.Feed.Levels = 5
	c.Feed.ReadTimeout = 0
	c.Feed.OnPriceMissing = "abort"
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.HTTP.Enabled = true
	c.HTTP.Addr = ":8080"
	c.Render.Console = true
	return c
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment (a .env file is honoured when present), in that order.
func Load() (Config, error) {
	//load environment variable
	_ = godotenv.Load()

	c := defaultConfig()
	if path := os.Getenv(ConfigPathEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

// Validate rejects configurations the session could never run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Feed.Symbol) == "" {
		return fmt.Errorf("feed symbol is required")
	}
	if err := feed.ValidateDisplayDepth(c.Feed.Levels); err != nil {
		return err
	}
	if _, err := feed.ParsePolicy(c.Feed.OnPriceMissing); err != nil {
		return err
	}
	if c.Feed.ReadTimeout < 0 {
		return fmt.Errorf("feed read timeout must not be negative")
	}
	return nil
}
