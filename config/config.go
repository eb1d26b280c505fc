// Package config holds the CLI configuration and build metadata.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/wiiext/protocol"
)

// Build metadata, injected at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func BuildVersion() string {
	return fmt.Sprintf("%s-%s-%s", Version, Date, Commit)
}

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
	AdapterMock    = "mock"
)

type Config struct {
	// Adapter selects the bus backend.
	Adapter string `yaml:"adapter"`
	// Device is the periph bus name for the generic adapter, e.g. "/dev/i2c-1" or "1".
	Device string `yaml:"device"`
	// Bus is the gobot bus number for the nanopi adapter.
	Bus int `yaml:"bus"`
	// Index selects one of several MCP2221 adapters; -1 requires exactly one.
	Index int `yaml:"index"`
	// SpeedKHz sets the bus clock for the generic adapter; 0 keeps the default.
	SpeedKHz int `yaml:"speed_khz"`
	// SettleDelay is the pause between bus transactions.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// Cooperative defers settle periods to the next transaction instead of sleeping.
	Cooperative bool `yaml:"cooperative"`
	// Rate is the polling rate in samples per second.
	Rate float64 `yaml:"rate"`
	// Mock configures the emulated controller used by the mock adapter.
	Mock MockConfig `yaml:"mock"`
}

type MockConfig struct {
	Profile string `yaml:"profile"`
}

func Default() Config {
	return Config{
		Adapter:     AdapterMCP2221,
		Bus:         0,
		Index:       -1,
		SettleDelay: protocol.InterMessageDelay,
		Rate:        10,
		Mock: MockConfig{
			Profile: "classic",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: could not read %s: %w", path, err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi, AdapterMock:
	default:
		return fmt.Errorf("config: unknown adapter %q", c.Adapter)
	}
	if c.SettleDelay < protocol.InterMessageDelay {
		return fmt.Errorf("config: settle delay %s is below the %s controllers require", c.SettleDelay, protocol.InterMessageDelay)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("config: rate must be positive, got %v", c.Rate)
	}
	if c.SpeedKHz < 0 {
		return fmt.Errorf("config: negative bus speed %d", c.SpeedKHz)
	}
	return nil
}

// ProtocolOptions translates the timing settings into driver options.
func (c Config) ProtocolOptions() []protocol.Option {
	opts := []protocol.Option{protocol.WithSettleDelay(c.SettleDelay)}
	if c.Cooperative {
		opts = append(opts, protocol.WithDelayer(protocol.NewScheduledDelay()))
	}
	return opts
}
