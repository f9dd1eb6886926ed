package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file. Every field is a
// pointer so an unset field can be told apart from a zero value;
// command-line flags override anything set here.
type fileConfig struct {
	Directory   *string  `yaml:"directory"`
	Bucket      *string  `yaml:"bucket"`
	Prefix      *string  `yaml:"prefix"`
	MaxFiles    *int64   `yaml:"max_files"`
	MaxBytes    *int64   `yaml:"max_bytes"`
	MaxSeconds  *int64   `yaml:"max_seconds"`
	Hierarchy   *bool    `yaml:"hierarchical"`
	Shuffle     *bool    `yaml:"shuffle"`
	Exclude     []string `yaml:"exclude"`
	Parallelism *int     `yaml:"parallelism"`
	Region      *string  `yaml:"region"`
	Endpoint    *string  `yaml:"endpoint"`
}

// loadFileConfig reads and parses the YAML configuration file.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
