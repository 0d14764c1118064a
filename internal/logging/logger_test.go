// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroConfigDiscards(t *testing.T) {
	l := New(Config{})
	defer l.Close()

	// must not panic and must not create files anywhere
	l.Slog().Info("dropped")
	assert.NotNil(t, l.Slog())
}

func TestFileLoggingWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{Dir: dir})
	l.Slog().Info("hello", "answer", 42)
	require.NoError(t, l.Close())

	name := filepath.Join(dir, "reposage_"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.EqualValues(t, 42, entry["answer"])
}

func TestDebugFilteredWithoutVerbose(t *testing.T) {
	dir := t.TempDir()

	l := New(Config{Dir: dir})
	l.Slog().Debug("invisible")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Empty(t, data)

	lv := New(Config{Dir: dir, Verbose: true})
	lv.Slog().Debug("visible")
	require.NoError(t, lv.Close())
	data, err = os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
}

func TestCloseIsIdempotent(t *testing.T) {
	l := New(Config{Dir: t.TempDir()})
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
