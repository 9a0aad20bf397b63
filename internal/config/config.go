// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"reportcheck/internal/preprocessors"
	"reportcheck/internal/rules"
)

// Output formats accepted in configuration files and on the command line.
var validFormats = map[string]bool{"text": true, "json": true, "csv": true, "yaml": true}

// Settings are the validation settings shared by the defaults block and profiles.
type Settings struct {
	Format    string `yaml:"format"`
	Verbose   bool   `yaml:"verbose"`
	Debug     bool   `yaml:"debug"`
	NoColor   bool   `yaml:"no_color"`
	Recursive bool   `yaml:"recursive"`
	Workers   int    `yaml:"workers"`
	FailUnder int    `yaml:"fail_under"`
}

// Extraction tunes document extraction.
type Extraction struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	MaxPages   int           `yaml:"max_pages"`
}

// Options converts the extraction settings for the preprocessors package.
func (e Extraction) Options() preprocessors.Options {
	return preprocessors.Options{
		Timeout:    e.Timeout,
		MaxRetries: e.MaxRetries,
		MaxPages:   e.MaxPages,
	}
}

// Config represents the application configuration.
type Config struct {
	Defaults   Settings   `yaml:"defaults"`
	Extraction Extraction `yaml:"extraction"`

	// RulesFile replaces the built-in internship-report rules
	RulesFile string `yaml:"rules_file"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	// Profiles for different validation scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides the defaults for one validation scenario. Fields left
// unset in the file keep the value from the defaults block.
type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Verbose     *bool  `yaml:"verbose"`
	NoColor     *bool  `yaml:"no_color"`
	Recursive   *bool  `yaml:"recursive"`
	Workers     *int   `yaml:"workers"`
	FailUnder   *int   `yaml:"fail_under"`
	RulesFile   string `yaml:"rules_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := preprocessors.DefaultOptions()
	cfg := &Config{
		Defaults: Settings{
			Format:    "text",
			FailUnder: 0,
		},
		Extraction: Extraction{
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			MaxPages:   opts.MaxPages,
		},
		Profiles: make(map[string]Profile),
	}
	cfg.Server.Port = 8080

	// Strict profile used for final submissions
	cfg.Profiles["submission"] = Profile{
		Description: "Final submission check: fails any report below the pass tier",
		FailUnder:   intPtr(80),
		NoColor:     boolPtr(true),
	}
	return cfg
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultRetries := config.Extraction.MaxRetries
	builtinProfiles := config.Profiles

	// Unknown keys are parse errors
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Zero retries is a meaningful setting, so only restore the default
	// when the key is absent.
	if !containsField(data, "extraction", "max_retries") {
		config.Extraction.MaxRetries = defaultRetries
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}
	for name, p := range builtinProfiles {
		if _, ok := config.Profiles[name]; !ok {
			config.Profiles[name] = p
		}
	}
	if config.RulesFile != "" && !filepath.IsAbs(config.RulesFile) {
		config.RulesFile = filepath.Join(filepath.Dir(configPath), config.RulesFile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory,
// then in the user configuration directory.
func FindConfigFile() string {
	for _, name := range []string{"reportcheck.yaml", "reportcheck.yml", ".reportcheck.yaml", ".reportcheck.yml"} {
		if fileExists(name) {
			return name
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, "reportcheck", name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found.
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Effective returns the defaults with the named profile applied. An empty
// name returns the defaults unchanged.
func (c *Config) Effective(profileName string) (Settings, string, error) {
	settings := c.Defaults
	rulesFile := c.RulesFile
	if profileName == "" {
		return settings, rulesFile, nil
	}

	profile := c.GetProfile(profileName)
	if profile == nil {
		return settings, rulesFile, fmt.Errorf("profile %q not found (available: %v)", profileName, c.ListProfiles())
	}
	if profile.Format != "" {
		settings.Format = profile.Format
	}
	if profile.Verbose != nil {
		settings.Verbose = *profile.Verbose
	}
	if profile.NoColor != nil {
		settings.NoColor = *profile.NoColor
	}
	if profile.Recursive != nil {
		settings.Recursive = *profile.Recursive
	}
	if profile.Workers != nil {
		settings.Workers = *profile.Workers
	}
	if profile.FailUnder != nil {
		settings.FailUnder = *profile.FailUnder
	}
	if profile.RulesFile != "" {
		rulesFile = profile.RulesFile
	}
	return settings, rulesFile, nil
}

// RuleSet loads the configured rule file, or returns the built-in rules
// when none is configured.
func (c *Config) RuleSet(rulesFile string) (*rules.RuleSet, error) {
	if rulesFile == "" {
		return rules.DefaultRuleSet(), nil
	}
	rs, err := rules.LoadFile(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %s: %w", rulesFile, err)
	}
	return rs, nil
}

// containsField checks if a nested field exists in the YAML data.
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig checks value ranges.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := validateSettings("defaults", config.Defaults.Format, config.Defaults.Workers, config.Defaults.FailUnder); err != nil {
		return err
	}
	if config.Extraction.Timeout < 0 {
		return fmt.Errorf("extraction.timeout must not be negative")
	}
	if config.Extraction.MaxRetries < 0 {
		return fmt.Errorf("extraction.max_retries must not be negative")
	}
	if config.Extraction.MaxPages < 0 {
		return fmt.Errorf("extraction.max_pages must not be negative")
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", config.Server.Port)
	}

	for name, p := range config.Profiles {
		workers, failUnder := 0, 0
		if p.Workers != nil {
			workers = *p.Workers
		}
		if p.FailUnder != nil {
			failUnder = *p.FailUnder
		}
		if err := validateSettings("profile '"+name+"'", p.Format, workers, failUnder); err != nil {
			return err
		}
	}
	return nil
}

func validateSettings(scope, format string, workers, failUnder int) error {
	if format != "" && !validFormats[format] {
		return fmt.Errorf("%s: unknown format %q", scope, format)
	}
	if workers < 0 {
		return fmt.Errorf("%s: workers must not be negative", scope)
	}
	if failUnder < 0 || failUnder > 100 {
		return fmt.Errorf("%s: fail_under must be between 0 and 100", scope)
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). The returned config is
// never nil: when loading fails the defaults are returned together with
// the error so the caller can warn about it.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
