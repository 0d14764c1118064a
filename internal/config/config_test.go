// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.FileExists(t, path)

	// data dir defaults next to the config file
	assert.Equal(t, filepath.Dir(path), cfg.DataDir)
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("ai:\n  api_key: sk-test\n  model: gpt-4o\ndata_dir: /tmp/sage\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, "/tmp/sage", cfg.DataDir)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("ai:\n  api_key: from-file\n"), 0644)
	require.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OPENAI_MODEL", "gpt-env")
	t.Setenv("REPOSAGE_DATA_DIR", "/env/dir")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, "gpt-env", cfg.AI.Model)
	assert.Equal(t, "/env/dir", cfg.DataDir)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("ai: [not a map"), 0644)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := Config{AI: AIConfig{APIKey: "k", Model: "m", BaseURL: "http://proxy"}}
	require.NoError(t, Save(path, in))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.AI.APIKey)
	assert.Equal(t, "http://proxy", cfg.AI.BaseURL)
}
