package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/cevcharge/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint used by
	// the serve command.
	PrometheusAddr string `json:"prometheus_addr"`
}

// SetDefaults applies defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}

// Validate checks that every sink names a type and that the Prometheus
// endpoint has an address.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sinks[%d]: type is required", i)
		}
	}
	if c.PrometheusAddr == "" {
		return errors.New("prometheus_addr is required")
	}
	return nil
}
