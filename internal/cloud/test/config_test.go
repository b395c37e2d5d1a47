// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud_test contains the test suite for the cloud package.
// This file tests the hierarchical TOML configuration loader: base
// values, environment overrides and the agent model table.
package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
)

const baseConfigToml = `
[application]
name = "slideshow-maker"
google_project_id = "base-project"
location = "us-central1"

[rate_limits]
global_per_second = 10
image_per_second = 3

[pipeline]
scene_count = 4
image_chunk_size = 3

[agent_models]
[agent_models.script-writer]
model = "gemini-2.0-flash"
temperature = 0.7
max_tokens = 2048
`

const overrideConfigToml = `
[application]
google_project_id = "override-project"

[rate_limits]
global_per_second = 100
`

// TestLoadConfigHierarchy verifies the environment-specific file
// overwrites the base values it names while everything else survives
// from the base file.
func TestLoadConfigHierarchy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	assert.NoError(t, os.MkdirAll(dir, 0755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseConfigToml), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging.toml"), []byte(overrideConfigToml), 0644))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "staging")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	// Overridden by the staging file.
	assert.Equal(t, "override-project", config.Application.GoogleProjectId)
	assert.Equal(t, 100, config.RateLimits.GlobalPerSecond)

	// Untouched base values survive.
	assert.Equal(t, "slideshow-maker", config.Application.Name)
	assert.Equal(t, 3, config.RateLimits.ImagePerSecond)
	assert.Equal(t, 4, config.Pipeline.SceneCount)

	model, ok := config.AgentModels["script-writer"]
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", model.Model)
	assert.Equal(t, int32(2048), model.MaxTokens)
}

// TestLoadConfigMissingOverrideFile verifies a runtime with no override
// file quietly uses the base configuration.
func TestLoadConfigMissingOverrideFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	assert.NoError(t, os.MkdirAll(dir, 0755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseConfigToml), 0644))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "nonexistent")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)
	assert.Equal(t, "base-project", config.Application.GoogleProjectId)
}
