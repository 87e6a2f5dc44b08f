package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operations a driver config can bind to a command.
const (
	OpExists   = "exists"
	OpPerform  = "perform"
	OpValue    = "value"
	OpHome     = "home"
	OpRelaunch = "relaunch"
)

// CommandConfig is one external command.
type CommandConfig struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
}

// ConfigFile represents the structure of a driver file: one command per
// operation. exists and perform are required.
type ConfigFile struct {
	Dir      string                   `yaml:"dir" json:"dir"`
	Commands map[string]CommandConfig `yaml:"commands" json:"commands"`
}

// LoadConfig reads a driver file (YAML, or JSON by extension).
func LoadConfig(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read driver config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if cfg.Dir == "" {
		cfg.Dir = filepath.Dir(path)
	}
	return &cfg, nil
}

func (c *ConfigFile) validate() error {
	for _, op := range []string{OpExists, OpPerform} {
		if c.Commands[op].Command == "" {
			return fmt.Errorf("command for %q is required", op)
		}
	}
	for op := range c.Commands {
		switch op {
		case OpExists, OpPerform, OpValue, OpHome, OpRelaunch:
		default:
			return fmt.Errorf("unknown operation %q", op)
		}
	}
	return nil
}
