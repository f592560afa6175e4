package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/cevcharge/core/metrics"
	"github.com/kilianp07/cevcharge/infra/mqtt"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are
// separated by a double underscore, e.g. K_CHARGING__PLUG_POWER_KW.
const EnvPrefix = "K_"

type Config struct {
	Charging ChargingConfig `json:"charging"`
	Dataset  DatasetConfig  `json:"dataset"`
	Output   OutputConfig   `json:"output"`
	Store    StoreConfig    `json:"store"`
	Metrics  metrics.Config `json:"metrics"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
	API      APIConfig      `json:"api"`
}

// Load reads the YAML or JSON file at path, applies environment overrides
// and defaults, then validates every section. An empty path loads defaults
// and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Charging.SetDefaults()
	c.Dataset.SetDefaults()
	c.Output.SetDefaults()
	c.Store.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section and reports the first invalid one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"charging", c.Charging.Validate},
		{"dataset", c.Dataset.Validate},
		{"output", c.Output.Validate},
		{"store", c.Store.Validate},
		{"metrics", c.Metrics.Validate},
		{"mqtt", c.MQTT.Validate},
		{"sentry", c.Sentry.Validate},
		{"api", c.API.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}
