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

	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/metrics"
	"github.com/transitflow/busalloc/core/topology"
	"github.com/transitflow/busalloc/infra/mqtt"
)

type Config struct {
	Server   ServerConfig        `json:"server"`
	Engine   allocation.Tunables `json:"engine"`
	Topology topology.Topology   `json:"topology"`
	Metrics  metrics.Config      `json:"metrics"`
	MQTT     mqtt.Config         `json:"mqtt"`
	History  HistoryConfig       `json:"history"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// APIToken, when set, protects the history endpoint with bearer auth.
	APIToken string `json:"api_token"`
}

// SetDefaults applies the default listen address.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
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
	if err := k.Load(env.Provider("BUSALLOC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "busalloc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Engine.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.History.SetDefaults()
	if len(cfg.Topology.Routes) == 0 {
		cfg.Topology = topology.Default()
	}
	if err := cfg.Topology.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
