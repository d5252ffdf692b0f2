package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the optional fanout configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults"`
	Theme    ThemeConfig    `toml:"theme" yaml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Nil means the user did
// not set the key, so the flag default applies.
type DefaultsConfig struct {
	Copies       *int    `toml:"copies" yaml:"copies"`
	Workers      *int    `toml:"workers" yaml:"workers"`
	PerSubfolder *int    `toml:"per_subfolder" yaml:"per_subfolder"`
	ChunkSize    *int    `toml:"chunk_size" yaml:"chunk_size"`
	MaxLimit     *int    `toml:"max_limit" yaml:"max_limit"`
	Zip          *bool   `toml:"zip" yaml:"zip"`
	Resume       *bool   `toml:"resume" yaml:"resume"`
	Randomize    *bool   `toml:"randomize" yaml:"randomize"`
	TUI          *bool   `toml:"tui" yaml:"tui"`
	BWLimit      *string `toml:"bwlimit" yaml:"bwlimit"`
	OnError      *string `toml:"on_error" yaml:"on_error"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green  *string `toml:"green" yaml:"green"`
	Blue   *string `toml:"blue" yaml:"blue"`
	Yellow *string `toml:"yellow" yaml:"yellow"`
	Red    *string `toml:"red" yaml:"red"`
	Teal   *string `toml:"teal" yaml:"teal"`
	Mauve  *string `toml:"mauve" yaml:"mauve"`
	Muted  *string `toml:"muted" yaml:"muted"`
	Dim    *string `toml:"dim" yaml:"dim"`
	Bright *string `toml:"bright" yaml:"bright"`
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fanout")
}

// Path returns the resolved path to the TOML config file.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// YAMLPath returns the resolved path to the YAML config file, consulted
// when no TOML file exists.
func YAMLPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG path, preferring config.toml
// over config.yaml. Returns a zero Config (no error) if neither exists.
// Config is always optional.
func Load() (Config, error) {
	var cfg Config

	tomlPath := Path()
	if tomlPath == "" {
		return cfg, nil
	}

	_, err := toml.DecodeFile(tomlPath, &cfg)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", tomlPath, err)
	}

	yamlPath := YAMLPath()
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", yamlPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", yamlPath, err)
	}
	return cfg, nil
}
