// Package config loads the service configuration from a YAML or JSON file
// with environment variable overrides.
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

	"github.com/procuro/rfqmatch/core/match"
	"github.com/procuro/rfqmatch/core/metrics"
	"github.com/procuro/rfqmatch/infra/mqtt"
	"github.com/procuro/rfqmatch/infra/ws"
)

type Config struct {
	Server      ServerConfig        `json:"server"`
	Matcher     match.Config        `json:"matcher"`
	Specialties map[string][]string `json:"specialties"`
	Registry    RegistryConfig      `json:"registry"`
	WS          ws.Config           `json:"ws"`
	Metrics     metrics.Config      `json:"metrics"`
	MQTT        mqtt.Config         `json:"mqtt"`
	Audit       AuditConfig         `json:"audit"`
}

// ServerConfig defines the HTTP listener shared by the API and the
// websocket endpoint.
type ServerConfig struct {
	Address string `json:"address"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// RegistryConfig defines connection liveness settings.
type RegistryConfig struct {
	// ProbeIntervalSeconds is the period between liveness sweeps.
	ProbeIntervalSeconds int `json:"probe_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *RegistryConfig) SetDefaults() {
	if c.ProbeIntervalSeconds == 0 {
		c.ProbeIntervalSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c RegistryConfig) Validate() error {
	if c.ProbeIntervalSeconds < 0 {
		return fmt.Errorf("probe interval must not be negative")
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides
	if err := k.Load(env.Provider("RFQ_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rfq_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Matcher.SetDefaults()
	cfg.Registry.SetDefaults()
	cfg.WS.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Audit.SetDefaults()
	if err := cfg.Matcher.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Registry.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.WS.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
