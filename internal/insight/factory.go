package insight

import (
	"fmt"

	"github.com/hquan/babytrack/internal/util"
)

// SourceConfig selects and configures an insight provider.
type SourceConfig struct {
	Source   string // "canned" or "remote"
	Endpoint string // Base URL, remote source only
}

// CreateProvider creates an insight provider based on configuration.
func CreateProvider(cfg *SourceConfig) (Provider, error) {
	switch cfg.Source {
	case "canned", "":
		util.LogDebug("Using canned insight provider")
		return NewCannedProvider(), nil
	case "remote":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("remote insight source requires an endpoint")
		}
		util.LogDebugf("Using remote insight provider at %s", cfg.Endpoint)
		return NewRemoteProvider(cfg.Endpoint), nil
	default:
		return nil, fmt.Errorf("unknown insight source: %s", cfg.Source)
	}
}
