package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/config"
)

// SourceType represents the type of roster source
type SourceType string

const (
	// FileSourceType reads a YAML or JSON file
	FileSourceType SourceType = "file"
	// HTTPSourceType fetches from a remote registry
	HTTPSourceType SourceType = "http"
)

// NewRosterSource creates a RosterSource based on the provided configuration
func NewRosterSource(cfg config.RosterSourceConfig, logger *logrus.Logger) (RosterSource, error) {
	switch SourceType(cfg.Type) {
	case FileSourceType:
		if cfg.Path == "" {
			return nil, fmt.Errorf("roster file path is required")
		}
		return NewFileSource(cfg.Path), nil

	case HTTPSourceType:
		if cfg.URL == "" {
			return nil, fmt.Errorf("roster registry url is required")
		}
		client := NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), logger)
		return NewHTTPSource(client, cfg.URL, cfg.APIKey, logger), nil

	case "":
		return nil, fmt.Errorf("no roster source configured")

	default:
		return nil, fmt.Errorf("unknown roster source: %s", cfg.Type)
	}
}
