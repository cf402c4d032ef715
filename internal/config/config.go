package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Licence verification strategies.
const (
	StrategyPrefix = "prefix"
	StrategyRemote = "remote"
)

// Entitlement backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"web"`

	DataDir string `env:"DATA_DIR" envDefault:"data/cities"`
	DBPath  string `env:"DB_PATH" envDefault:"data/cityguide.db"`

	// Cities is the picker order; the first entry is shown on start.
	Cities   []string `env:"CITIES" envSeparator:"," envDefault:"Utopia,Osaka,Hong Kong"`
	DemoCity string   `env:"DEMO_CITY" envDefault:"Utopia"`

	LicenseStrategy string        `env:"LICENSE_STRATEGY" envDefault:"prefix"`
	LicenseTable    string        `env:"LICENSE_TABLE" envDefault:"data/licenses.json"`
	LicenseAPIURL   string        `env:"LICENSE_API_URL"` // empty means license.DefaultEndpoint
	LicenseTimeout  time.Duration `env:"LICENSE_TIMEOUT" envDefault:"10s"`

	PurchaseBaseURL string `env:"PURCHASE_BASE_URL" envDefault:"https://gumroad.com"`
	VendorUsername  string `env:"VENDOR_USERNAME" envDefault:"YOUR_ACCOUNT"`

	EntitlementBackend string `env:"ENTITLEMENT_BACKEND" envDefault:"sqlite"`
	RedisURL           string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	GeoTimeout time.Duration `env:"GEO_TIMEOUT" envDefault:"8s"`
	GeoMaxAge  time.Duration `env:"GEO_MAX_AGE" envDefault:"30s"`
	// GeoFixed pins the visitor to "lat,lon" instead of asking the page.
	GeoFixed string `env:"GEO_FIXED"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.LicenseStrategy = strings.ToLower(strings.TrimSpace(c.LicenseStrategy))
	c.EntitlementBackend = strings.ToLower(strings.TrimSpace(c.EntitlementBackend))

	cities := c.Cities[:0]
	for _, city := range c.Cities {
		if city = strings.TrimSpace(city); city != "" {
			cities = append(cities, city)
		}
	}
	c.Cities = cities

	switch {
	case len(c.Cities) == 0:
		return fmt.Errorf("CITIES must name at least one city")
	case !slices.Contains([]string{StrategyPrefix, StrategyRemote}, c.LicenseStrategy):
		return fmt.Errorf("LICENSE_STRATEGY %q: want prefix or remote", c.LicenseStrategy)
	case !slices.Contains([]string{BackendSQLite, BackendRedis, BackendMemory}, c.EntitlementBackend):
		return fmt.Errorf("ENTITLEMENT_BACKEND %q: want sqlite, redis or memory", c.EntitlementBackend)
	case c.LicenseTimeout <= 0:
		return fmt.Errorf("LICENSE_TIMEOUT must be positive")
	case c.GeoTimeout <= 0:
		return fmt.Errorf("GEO_TIMEOUT must be positive")
	}
	return nil
}
