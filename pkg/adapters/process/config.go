package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is an external program run after each commit.
type Command struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`

	// Kinds restricts the command to commits on these lists. Empty means all.
	Kinds []string `yaml:"kinds" json:"kinds"`
}

// ConfigFile represents the structure of a hooks file.
type ConfigFile struct {
	Commands []Command `yaml:"commands" json:"commands"`
}

// LoadCommands reads a hooks file (YAML or JSON). A missing file yields no commands.
func LoadCommands(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	commands := make([]Command, 0, len(cfg.Commands))
	for i, c := range cfg.Commands {
		if c.Command == "" {
			return nil, fmt.Errorf("hook %d (%q): command is required", i, c.Name)
		}
		if c.Name == "" {
			c.Name = filepath.Base(c.Command)
		}
		commands = append(commands, c)
	}
	return commands, nil
}
