// Copyright Sift Labs, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config implements the yaml configuration file of the analyzer and
// the leveled logging used by detectors and the driver. The dataflow core
// itself never reads configuration or logs.
package config

import (
	"fmt"
	"os"

	"github.com/siftlabs/sift/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config selects the detectors to run and how their findings are reported.
// If some field is not defined in the config file, it will be empty/zero in
// the struct.
type Config struct {
	// yaml.v3 only flattens an embedded struct when it carries an explicit
	// inline tag.
	Options `yaml:",inline"`

	sourceFile string

	// Detectors lists the detectors to enable. An empty list enables every
	// registered detector.
	Detectors []string `yaml:"detectors"`

	// ExcludeDetectors lists detectors to disable, applied after Detectors.
	ExcludeDetectors []string `yaml:"exclude-detectors"`
}

// Options are the scalar settings of an analysis run.
type Options struct {
	// LogLevel controls the verbosity of the LogGroup built from this config.
	LogLevel int `yaml:"log-level"`

	// IncludeStdlib makes detectors analyze standard-library-origin functions
	// too. Most detectors only report on user code.
	IncludeStdlib bool `yaml:"include-stdlib"`

	// MaxSolverSteps bounds the number of transfer applications per solver
	// invocation. 0 means unbounded, the default: well-behaved lattices
	// converge without a guard.
	MaxSolverSteps int `yaml:"max-solver-steps"`

	// NoColor disables ANSI colors in the report output.
	NoColor bool `yaml:"no-color"`
}

// NewDefault returns a config with default settings: all detectors enabled,
// info-level logging, user code only.
func NewDefault() *Config {
	return &Config{
		Options: Options{
			LogLevel: int(InfoLevel),
		},
	}
}

// Load reads a config from a yaml file and validates it.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", filename, err)
	}
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", filename, err)
	}
	cfg.sourceFile = filename
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", filename, err)
	}
	return cfg, nil
}

// SourceFile returns the file the config was loaded from, or "" for defaults.
func (c *Config) SourceFile() string {
	return c.sourceFile
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d, got %d",
			int(ErrLevel), int(TraceLevel), c.LogLevel)
	}
	if c.MaxSolverSteps < 0 {
		return fmt.Errorf("max-solver-steps must be non-negative, got %d", c.MaxSolverSteps)
	}
	return nil
}

// DetectorEnabled returns true when the named detector should run under this
// config: it is in Detectors (or Detectors is empty) and not in
// ExcludeDetectors.
func (c *Config) DetectorEnabled(name string) bool {
	if funcutil.Contains(c.ExcludeDetectors, name) {
		return false
	}
	return len(c.Detectors) == 0 || funcutil.Contains(c.Detectors, name)
}
