package main

import (
	"github.com/BurntSushi/toml"
	"github.com/mgnsk/strqueue/harness"
	"github.com/mgnsk/strqueue/internal/logger"
)

// Config is the qtest configuration.
type Config struct {
	Log     logger.Config
	Harness struct {
		FailProbability float64 // fraction of allocations failing, in [0, 1]
		Seed            int64
		StringLimit     int
		EchoCommands    bool
	}
}

func defaultConfig() *Config {
	config := &Config{}
	config.Log.LogLevel = "info"
	config.Log.MaxLogfileSize = 10
	config.Log.MaxAge = 7
	config.Harness.Seed = 1
	config.Harness.StringLimit = harness.DefaultStringLimit
	return config
}

// LoadConfigStr decodes a TOML configuration on top of the defaults.
func LoadConfigStr(str string) (*Config, error) {
	config := defaultConfig()
	if _, err := toml.Decode(str, config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig decodes a TOML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}
