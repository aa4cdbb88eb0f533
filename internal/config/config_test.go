package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "blueprint.apib", c.Output)
	assert.Equal(t, DefaultRouterTypes, c.Routers)
	assert.Equal(t, "text", c.Defaults.String)
	assert.Equal(t, "key", c.Defaults.JSONKey)
	assert.Zero(t, c.Defaults.Number)
	assert.False(t, c.Defaults.Boolean)
	assert.NotNil(t, c.Examples.Response)
	assert.NotNil(t, c.Examples.Param)
}

func TestLoad(t *testing.T) {
	t.Run("loads a full config", func(t *testing.T) {
		c := loadFromString(t, `
output: docs/api.apib
host: https://api.example.com
title: Example API
description: The example service.
routers: [Router]
defaults:
  string: hello
  number: 7
  boolean: true
  jsonKey: extra
examples:
  response:
    id: 42
  param:
    id: "7"
afterHook: aglio -i docs/api.apib -o docs/api.html
`)
		assert.Equal(t, "docs/api.apib", c.Output)
		assert.Equal(t, "https://api.example.com", c.Host)
		assert.Equal(t, "Example API", c.Title)
		assert.Equal(t, []string{"Router"}, c.Routers)
		assert.Equal(t, "hello", c.Defaults.String)
		assert.Equal(t, float64(7), c.Defaults.Number)
		assert.True(t, c.Defaults.Boolean)
		assert.Equal(t, "extra", c.Defaults.JSONKey)
		assert.Equal(t, 42, c.Examples.Response["id"])
		assert.Equal(t, "7", c.Examples.Param["id"])
		assert.Equal(t, "aglio -i docs/api.apib -o docs/api.html", c.AfterHook)
	})

	t.Run("applies defaults for an empty config", func(t *testing.T) {
		c := loadFromString(t, "{}\n")
		assert.Equal(t, "blueprint.apib", c.Output)
		assert.Equal(t, DefaultRouterTypes, c.Routers)
	})

	t.Run("copies the both bucket into each context table", func(t *testing.T) {
		c := loadFromString(t, `
examples:
  both:
    id: 42
    name: alice
  response:
    id: 99
`)
		// Explicit response entry wins over the both bucket.
		assert.Equal(t, 99, c.Examples.Response["id"])
		assert.Equal(t, 42, c.Examples.Param["id"])
		// Unopposed both entries land in each table.
		assert.Equal(t, "alice", c.Examples.Response["name"])
		assert.Equal(t, "alice", c.Examples.Param["name"])
	})

	t.Run("fails on unreadable file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("fails on malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "output: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("fails on empty router type name", func(t *testing.T) {
		path := writeConfig(t, "routers: [Router, \"\"]\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty type names")
	})
}

func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	c, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
