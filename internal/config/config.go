package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultServerAddr = ":8080"

// Environment variables that override values of the config file.
const (
	EnvDatabaseURL    = "MOTHERGEO_DB_URL"
	EnvDatabaseSchema = "MOTHERGEO_DB_SCHEMA"
	EnvServerAddr     = "MOTHERGEO_SERVER_ADDR"
)

type Config struct {
	Version  int      `yaml:"version"`
	Models   []Model  `yaml:"models"`
	Database Database `yaml:"database"`
	Package  Package  `yaml:"package"`
	Server   Server   `yaml:"server"`
}

// Model points to model documents. Path is a glob relative to the working
// directory.
type Model struct {
	Path string `yaml:"path"`
}

// Database configures the store tables are provisioned in. An empty URL
// means an in-memory store.
type Database struct {
	URL    string `yaml:"url"`
	Schema string `yaml:"schema"`
}

// Package is the output package of generated code. Nothing is generated
// when Path is empty.
type Package struct {
	Path string `yaml:"path"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal config file "%s": %w`, configPath, err)
	}

	config.applyEnv(os.LookupEnv)

	if config.Server.Addr == "" {
		config.Server.Addr = DefaultServerAddr
	}

	return &config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		EnvDatabaseURL:    &c.Database.URL,
		EnvDatabaseSchema: &c.Database.Schema,
		EnvServerAddr:     &c.Server.Addr,
	}

	for name, target := range overrides {
		if v, ok := lookup(name); ok {
			*target = v
		}
	}
}
