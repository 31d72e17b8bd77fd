package tracker

import (
	"fmt"
)

// Config carries the assembled runtime configuration for the tracker.
type Config struct {
	DataDir         string
	Listen          string
	Timezone        string
	BabyName        string
	InsightSource   string
	InsightEndpoint string
	Debug           bool
}

// Validate checks the configuration for obvious mistakes before startup.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.InsightSource == "remote" && c.InsightEndpoint == "" {
		return fmt.Errorf("remote insight source requires --insight-endpoint")
	}
	return nil
}
