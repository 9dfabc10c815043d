// Package config loads service configuration from a yaml, json or toml file
// with JOI_ environment overrides (JOI_GRPC__ADDR sets grpc.addr).
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/generator"
	"github.com/milad/joienergy/internal/ingest"
	"github.com/milad/joienergy/internal/logging"
	"github.com/milad/joienergy/internal/pricing"
	"github.com/milad/joienergy/internal/repo/influxrepo"
)

const envPrefix = "JOI_"

type Config struct {
	GRPC    GRPCConfig     `json:"grpc"`
	HTTP    HTTPConfig     `json:"http"`
	Logging logging.Config `json:"logging"`
	Storage StorageConfig  `json:"storage"`
	Pricing PricingConfig  `json:"pricing"`
	Seed    SeedConfig     `json:"seed"`
	Ingest  IngestConfig   `json:"ingest"`
}

type GRPCConfig struct {
	Addr string `json:"addr"`
	// MetricsAddr serves /metrics for the gRPC process when set.
	MetricsAddr string `json:"metrics_addr"`
}

type HTTPConfig struct {
	Addr       string `json:"addr"`
	GRPCTarget string `json:"grpc_target"`
	// GRPCWait bounds how long the gateway waits for the gRPC health check
	// at startup.
	GRPCWait        time.Duration `json:"grpc_wait"`
	UpstreamTimeout time.Duration `json:"upstream_timeout"`
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendInflux = "influx"
)

type StorageConfig struct {
	Backend string            `json:"backend"`
	SQLite  SQLiteConfig      `json:"sqlite"`
	Influx  influxrepo.Config `json:"influx"`
}

type SQLiteConfig struct {
	Path string `json:"path"`
}

type PricingConfig struct {
	// Window is the default look-back of the usage cost.
	Window   time.Duration     `json:"window"`
	Plans    []PlanConfig      `json:"plans"`
	Accounts map[string]string `json:"accounts"`
}

type PlanConfig struct {
	ID       string `json:"id"`
	Supplier string `json:"supplier"`
	// UnitRate and multipliers are decimal strings; numbers are accepted too.
	UnitRate        string            `json:"unit_rate"`
	PeakMultipliers map[string]string `json:"peak_multipliers"`
}

// SeedConfig controls the readings loaded at startup.
type SeedConfig struct {
	// CSV is an optional smart_meter_id,time,reading file.
	CSV string `json:"csv"`
	// Disabled turns off generated readings for account meters.
	Disabled bool          `json:"disabled"`
	Count    int           `json:"count"`
	Interval time.Duration `json:"interval"`
	// RandomSeed of zero seeds from the clock.
	RandomSeed uint64 `json:"random_seed"`
}

type IngestConfig struct {
	Kafka ingest.Config `json:"kafka"`
}

// Load reads path (optional) and the environment. An empty path loads only
// defaults and environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = tomlParser{}
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeyValue maps JOI_INGEST__KAFKA__BROKERS to ingest.kafka.brokers.
// Broker lists are comma separated.
func envKeyValue(key, value string) (string, any) {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if strings.HasSuffix(key, ".brokers") {
		return key, strings.Split(value, ",")
	}
	return key, value
}

func (c *Config) SetDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":9090"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.GRPCTarget == "" {
		c.HTTP.GRPCTarget = "127.0.0.1:9090"
	}
	if c.HTTP.GRPCWait == 0 {
		c.HTTP.GRPCWait = 20 * time.Second
	}
	if c.HTTP.UpstreamTimeout == 0 {
		c.HTTP.UpstreamTimeout = 5 * time.Second
	}
	c.Logging.SetDefaults()
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "joienergy.db"
	}
	if c.Pricing.Window == 0 {
		c.Pricing.Window = pricing.DefaultWindow
	}
	if len(c.Pricing.Plans) == 0 {
		c.Pricing.Plans = DefaultPlans()
		if len(c.Pricing.Accounts) == 0 {
			c.Pricing.Accounts = DefaultAccounts()
		}
	}
	if c.Seed.Count == 0 {
		c.Seed.Count = generator.DefaultCount
	}
	if c.Seed.Interval == 0 {
		c.Seed.Interval = generator.DefaultInterval
	}
	c.Ingest.Kafka.SetDefaults()
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.GRPCWait < 0 {
		errs = append(errs, errors.New("http.grpc_wait must be >= 0"))
	}
	if c.HTTP.UpstreamTimeout < 0 {
		errs = append(errs, errors.New("http.upstream_timeout must be > 0"))
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLite.Path) == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required"))
		}
	case BackendInflux:
		in := c.Storage.Influx
		if in.URL == "" || in.Org == "" || in.Bucket == "" {
			errs = append(errs, errors.New("storage.influx requires url, org and bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unsupported %q (memory, sqlite, influx)", c.Storage.Backend))
	}

	if c.Pricing.Window < 0 {
		errs = append(errs, errors.New("pricing.window must be > 0"))
	}
	plans, err := c.Pricing.PricePlans()
	if err != nil {
		errs = append(errs, err)
	} else {
		known := make(map[string]bool, len(plans))
		for _, p := range plans {
			if known[p.ID] {
				errs = append(errs, fmt.Errorf("pricing.plans: duplicate id %q", p.ID))
			}
			known[p.ID] = true
		}
		for meter, plan := range c.Pricing.Accounts {
			if !known[plan] {
				errs = append(errs, fmt.Errorf("pricing.accounts: %s refers to unknown plan %q", meter, plan))
			}
		}
	}

	if c.Seed.Count < 0 {
		errs = append(errs, errors.New("seed.count must be >= 0"))
	}
	if c.Seed.Interval < 0 {
		errs = append(errs, errors.New("seed.interval must be > 0"))
	}
	if err := c.Ingest.Kafka.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PricePlans converts the configured plans, keeping their order.
func (p PricingConfig) PricePlans() ([]domain.PricePlan, error) {
	out := make([]domain.PricePlan, 0, len(p.Plans))
	for i, pc := range p.Plans {
		rate, err := decimal.NewFromString(pc.UnitRate)
		if err != nil {
			return nil, fmt.Errorf("pricing.plans[%d].unit_rate: %w", i, err)
		}
		plan := domain.PricePlan{ID: pc.ID, Supplier: pc.Supplier, UnitRate: rate}
		if len(pc.PeakMultipliers) > 0 {
			plan.PeakMultipliers = make(map[time.Weekday]decimal.Decimal, len(pc.PeakMultipliers))
			for day, v := range pc.PeakMultipliers {
				wd, err := domain.ParseWeekday(day)
				if err != nil {
					return nil, fmt.Errorf("pricing.plans[%d].peak_multipliers: %w", i, err)
				}
				m, err := decimal.NewFromString(v)
				if err != nil {
					return nil, fmt.Errorf("pricing.plans[%d].peak_multipliers.%s: %w", i, day, err)
				}
				plan.PeakMultipliers[wd] = m
			}
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("pricing.plans[%d]: %w", i, err)
		}
		out = append(out, plan)
	}
	return out, nil
}

func DefaultPlans() []PlanConfig {
	return []PlanConfig{
		{ID: "price-plan-0", Supplier: "Dr Evil's Dark Energy", UnitRate: "10"},
		{ID: "price-plan-1", Supplier: "The Green Eco", UnitRate: "2"},
		{ID: "price-plan-2", Supplier: "Power for Everyone", UnitRate: "1"},
	}
}

func DefaultAccounts() map[string]string {
	return map[string]string{
		"smart-meter-0": "price-plan-0",
		"smart-meter-1": "price-plan-1",
		"smart-meter-2": "price-plan-0",
		"smart-meter-3": "price-plan-2",
		"smart-meter-4": "price-plan-1",
	}
}
