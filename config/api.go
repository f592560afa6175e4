package config

import (
	"errors"
	"fmt"
	"strings"
)

// APIConfig configures the HTTP server started by the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on /api routes.
	Token string `json:"token"`
	// CORSOrigins lists browser origins allowed to read the API.
	CORSOrigins []string `json:"cors_origins"`
}

// SetDefaults listens on :8080.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate requires a listen address and non-blank CORS origins.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	for i, o := range c.CORSOrigins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}
