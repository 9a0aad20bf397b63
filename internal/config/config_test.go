// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reportcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, 0, cfg.Defaults.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Extraction.Timeout)
	assert.Equal(t, 2, cfg.Extraction.MaxRetries)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Contains(t, cfg.ListProfiles(), "submission")
}

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfigOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Defaults.Format)
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	cfg, err := LoadConfigOrDefault("/nonexistent/path/reportcheck.yaml")
	require.Error(t, err)
	require.NotNil(t, cfg, "defaults are returned alongside the error")
	assert.Equal(t, "text", cfg.Defaults.Format)
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	path := writeConfig(t, ":::invalid yaml:::")
	cfg, err := LoadConfigOrDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_UnknownKeys(t *testing.T) {
	tests := map[string]string{
		"misspelled block":   ":::invalid yaml:::\ndefautls:\n  format: json\n",
		"misspelled setting": "defaults:\n  fromat: json\n",
		"misspelled profile": "profiles:\n  draft:\n    fail_uder: 10\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "error parsing config file")
		})
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "# no settings yet\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Defaults, cfg.Defaults)
	assert.Equal(t, 2, cfg.Extraction.MaxRetries)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
defaults:
  format: json
  workers: 4
  fail_under: 60
extraction:
  timeout: 30s
  max_pages: 120
rules_file: rules/custom.yaml
server:
  port: 9090
profiles:
  draft:
    description: Early draft review
    fail_under: 0
    verbose: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Defaults.Format)
	assert.Equal(t, 4, cfg.Defaults.Workers)
	assert.Equal(t, 60, cfg.Defaults.FailUnder)
	assert.Equal(t, 30*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 2, cfg.Extraction.MaxRetries, "absent max_retries keeps the default")
	assert.Equal(t, 120, cfg.Extraction.MaxPages)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rules/custom.yaml"), cfg.RulesFile)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"draft", "submission"}, cfg.ListProfiles())

	opts := cfg.Extraction.Options()
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 120, opts.MaxPages)
}

func TestLoadConfig_ZeroRetries(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "extraction:\n  max_retries: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Extraction.MaxRetries)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown format", "defaults:\n  format: sarif\n", `unknown format "sarif"`},
		{"fail under range", "defaults:\n  fail_under: 101\n", "fail_under must be between 0 and 100"},
		{"negative workers", "defaults:\n  workers: -1\n", "workers must not be negative"},
		{"negative retries", "extraction:\n  max_retries: -3\n", "max_retries must not be negative"},
		{"port range", "server:\n  port: 70000\n", "out of range"},
		{"profile format", "profiles:\n  x:\n    format: xml\n", `profile 'x': unknown format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration validation failed")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEffective(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
defaults:
  format: csv
  workers: 2
  recursive: true
profiles:
  strict:
    fail_under: 90
    recursive: false
    rules_file: /etc/reportcheck/strict.yaml
`))
	require.NoError(t, err)

	base, rulesFile, err := cfg.Effective("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Defaults, base)
	assert.Empty(t, rulesFile)

	strict, rulesFile, err := cfg.Effective("strict")
	require.NoError(t, err)
	assert.Equal(t, "csv", strict.Format, "unset profile fields keep defaults")
	assert.Equal(t, 2, strict.Workers)
	assert.Equal(t, 90, strict.FailUnder)
	assert.False(t, strict.Recursive)
	assert.Equal(t, "/etc/reportcheck/strict.yaml", rulesFile)

	submission, _, err := cfg.Effective("submission")
	require.NoError(t, err)
	assert.Equal(t, 80, submission.FailUnder)
	assert.True(t, submission.NoColor)

	_, _, err = cfg.Effective("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "missing" not found`)
}

func TestRuleSet(t *testing.T) {
	cfg := Default()
	rs, err := cfg.RuleSet("")
	require.NoError(t, err)
	assert.NotEmpty(t, rs.Sections)

	_, err = cfg.RuleSet(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading rules from")
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	assert.Empty(t, FindConfigFile())

	require.NoError(t, os.WriteFile(".reportcheck.yaml", []byte("defaults:\n  format: yaml\n"), 0o600))
	assert.Equal(t, ".reportcheck.yaml", FindConfigFile())

	require.NoError(t, os.WriteFile("reportcheck.yaml", []byte("defaults:\n  format: json\n"), 0o600))
	assert.Equal(t, "reportcheck.yaml", FindConfigFile())

	cfg, err := LoadConfigOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Defaults.Format)
}
