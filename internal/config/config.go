// Package config holds two distinct concerns that share a name only by
// convention: the ambient, process-level CLI configuration (this file,
// loaded from an optional "bintest.yaml" discovery file via viper) and the
// per-run suite/file/test precedence Resolver (resolver.go).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Exit codes.
const (
	ExitSuccess        = 0
	ExitTestFailure    = 1
	ExitError          = 2
	ExitUsage          = 64
	ExitCanceled       = 130
)

// CLIConfig is the optional ambient configuration read from "bintest.yaml"
// (or "bintest.yml") in the directory passed to LoadCLIConfig. It only ever supplies
// defaults for CLI flags; it has no bearing on the per-spec suite/file/test
// precedence chain the Resolver implements.
type CLIConfig struct {
	Output string `mapstructure:"output"` // "human" | "json" | "junit"
	Jobs   int    `mapstructure:"jobs"`
	NoColor bool  `mapstructure:"no_color"`
}

// LoadCLIConfig loads "bintest.yaml" from dir if present. A missing file is
// not an error — it just means every flag falls back to its built-in
// default.
func LoadCLIConfig(dir string) (*CLIConfig, error) {
	v := viper.New()
	v.SetConfigName("bintest")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	cfg := &CLIConfig{Output: "human"}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading bintest.yaml: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing bintest.yaml: %w", err)
	}
	return cfg, nil
}
