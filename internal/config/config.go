// Package config loads and validates the TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/internal/core"
)

// Config is the root configuration.
type Config struct {
	Station   StationConfig   `toml:"station"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
	Billing   BillingConfig   `toml:"billing"`
	Ingestion IngestionConfig `toml:"ingestion"`
}

// StationConfig identifies the airport this operational day belongs to.
type StationConfig struct {
	AirportCode    string `toml:"airport_code" json:"airport_code"`
	OperationalDay string `toml:"operational_day" json:"operational_day"` // YYYY-MM-DD, informational
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSecs    int      `toml:"read_timeout_secs"`
	WriteTimeoutSecs   int      `toml:"write_timeout_secs"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig controls the optional SQLite archive.
type StorageConfig struct {
	Enabled    bool   `toml:"enabled"`
	SQLitePath string `toml:"sqlite_path"`
}

// BillingConfig carries the default fee schedule and the discount rule set.
// Amounts are decimal strings so the file round-trips exactly.
type BillingConfig struct {
	ArrivalFee         string            `toml:"arrival_fee"`
	DepartureFee       string            `toml:"departure_fee"`
	GateBaseFee        string            `toml:"gate_base_fee"`
	SpecialRequestFees map[string]string `toml:"special_request_fees"`
	Discounts          []DiscountConfig  `toml:"discounts"`
}

// DiscountConfig is one promotional discount rule as configured.
type DiscountConfig struct {
	Name        string `toml:"name"`
	Kind        string `toml:"kind"` // percentage, flat
	Value       string `toml:"value"`
	Priority    int    `toml:"priority"`
	AirlineCode string `toml:"airline_code"`
}

// IngestionConfig points at the optional CSV seed files.
type IngestionConfig struct {
	AirlinesCSV string `toml:"airlines_csv"`
	FlightsCSV  string `toml:"flights_csv"`
	GatesCSV    string `toml:"gates_csv"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Station: StationConfig{
			AirportCode: "SIN",
		},
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Enabled:    false,
			SQLitePath: "gateops.db",
		},
		Billing: BillingConfig{
			ArrivalFee:   "500",
			DepartureFee: "800",
			GateBaseFee:  "300",
			SpecialRequestFees: map[string]string{
				string(core.RequestLWTT):         "500",
				string(core.RequestOverSize):     "450",
				string(core.RequestHeavyVehicle): "150",
			},
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Station.AirportCode == "" {
		return fmt.Errorf("station.airport_code is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.FeeSchedule(); err != nil {
		return err
	}
	if _, err := c.DiscountRules(); err != nil {
		return err
	}
	return nil
}

// FeeSchedule materializes the default fee schedule with exact decimals.
func (c *Config) FeeSchedule() (core.FeeSchedule, error) {
	arrival, err := parseAmount("billing.arrival_fee", c.Billing.ArrivalFee)
	if err != nil {
		return core.FeeSchedule{}, err
	}
	departure, err := parseAmount("billing.departure_fee", c.Billing.DepartureFee)
	if err != nil {
		return core.FeeSchedule{}, err
	}
	gate, err := parseAmount("billing.gate_base_fee", c.Billing.GateBaseFee)
	if err != nil {
		return core.FeeSchedule{}, err
	}
	schedule := core.FeeSchedule{
		ArrivalFee:         arrival,
		DepartureFee:       departure,
		GateBaseFee:        gate,
		SpecialRequestFees: make(map[core.SpecialRequestCode]decimal.Decimal, len(c.Billing.SpecialRequestFees)),
	}
	for code, raw := range c.Billing.SpecialRequestFees {
		parsed := core.SpecialRequestCode(code)
		if !parsed.Valid() || parsed == core.RequestNone {
			return core.FeeSchedule{}, fmt.Errorf("billing.special_request_fees: unknown code %q", code)
		}
		fee, err := parseAmount("billing.special_request_fees."+code, raw)
		if err != nil {
			return core.FeeSchedule{}, err
		}
		schedule.SpecialRequestFees[parsed] = fee
	}
	return schedule, nil
}

// DiscountRules materializes the configured discount rules.
func (c *Config) DiscountRules() ([]billing.DiscountRule, error) {
	rules := make([]billing.DiscountRule, 0, len(c.Billing.Discounts))
	for _, d := range c.Billing.Discounts {
		value, err := parseAmount("billing.discounts."+d.Name, d.Value)
		if err != nil {
			return nil, err
		}
		rule := billing.DiscountRule{
			Name:        d.Name,
			Kind:        billing.DiscountKind(d.Kind),
			Value:       value,
			Priority:    d.Priority,
			AirlineCode: d.AirlineCode,
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q: %w", key, raw, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: amount %q must not be negative", key, raw)
	}
	return value, nil
}
