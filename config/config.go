// Package config loads the journal's scalar, serializable options --
// journalPath, maxLogFileSize, name -- from a YAML file, the way
// a deployment would configure which directory and rotation size to
// use without recompiling. The collaborator interfaces (encoder,
// decoder, id generator, naming, listener) are still wired in code:
// they aren't the kind of thing a config file can express.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Core is the subset of wal.Options that can be expressed as data.
type Core struct {
	JournalPath    string `yaml:"journalPath"`
	MaxLogFileSize uint32 `yaml:"maxLogFileSize"`
	Name           string `yaml:"name"`
}

// Load reads and parses a Core from a YAML file at path.
func Load(path string) (Core, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Core{}, err
	}
	var c Core
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Core{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if c.JournalPath == "" {
		return Core{}, fmt.Errorf("config: %s: journalPath is required", path)
	}
	if c.MaxLogFileSize == 0 {
		return Core{}, fmt.Errorf("config: %s: maxLogFileSize must be positive", path)
	}
	return c, nil
}
