package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration. Environment variables are parsed
// from the PULSEBOARD_ prefix, e.g. PULSEBOARD_HTTP_PORT.
type Config struct {
	// Build target selects the deployment flavor: local or cloud.
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// DBDriver is derived from BuildTarget when "auto": mongo locally and in
	// the default deployment, postgres where the ops stack prefers it.
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Mongo configuration
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"pulseboard"`

	// Postgres configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`

	// Collectors (ingestion). Disabled unless tokens are configured.
	CollectorsEnabled       bool   `envconfig:"COLLECTORS_ENABLED" default:"false"`
	CollectIntervalSeconds  int    `envconfig:"COLLECT_INTERVAL_SECONDS" default:"300"`
	GitHubToken             string `envconfig:"GITHUB_TOKEN" default:""`
	GitHubOrg               string `envconfig:"GITHUB_ORG" default:""`
	GitHubBaseURL           string `envconfig:"GITHUB_BASE_URL" default:"https://api.github.com"`
	SlackToken              string `envconfig:"SLACK_TOKEN" default:""`
	SlackChannel            string `envconfig:"SLACK_CHANNEL" default:""`
	SlackBaseURL            string `envconfig:"SLACK_BASE_URL" default:"https://slack.com/api"`
	CollectorTimeoutSeconds int    `envconfig:"COLLECTOR_TIMEOUT_SECONDS" default:"20"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when "auto".
func (c *Config) ResolveDefaults() error {
	switch c.BuildTarget {
	case "local", "cloud":
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = "mongo"
	}
	switch c.DBDriver {
	case "mongo", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New parses the environment into a Config.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PULSEBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
