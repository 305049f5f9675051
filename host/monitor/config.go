package monitor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the monitor's YAML configuration. Flags override it.
type Config struct {
	Device     string `yaml:"device"`
	Baud       int    `yaml:"baud"`
	TickUS     uint32 `yaml:"tick_us"`
	StallAfter int    `yaml:"stall_after"`
}

// DefaultConfig matches the demo firmware under targets/rp2040.
func DefaultConfig() Config {
	return Config{
		Device:     "/dev/ttyACM0",
		Baud:       115200,
		TickUS:     1000,
		StallAfter: 5,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Device == "" {
		return cfg, fmt.Errorf("config %s: device must not be empty", path)
	}
	return cfg, nil
}
