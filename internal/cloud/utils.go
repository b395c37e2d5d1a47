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

// Package cloud provides components for interacting with external
// generation providers. This file contains the hierarchical configuration
// loader: a base configuration file is read first, then an
// environment-specific file (e.g. .env.local.toml, .env.test.toml)
// overwrites values on top of it. The environment is selected by an
// environment variable so test, local and production runs can share one
// base file.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: The hierarchical configuration loader.
package cloud

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cloud constants define key strings used for configuration loading.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It
// first loads a base configuration file and then overwrites its values
// with an environment-specific configuration file. The config directory
// and the environment are determined by environment variables.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be
//     populated from the TOML files.
func LoadConfig(baseConfig interface{}) {
	// Read the directory path for config files from an environment variable.
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	// Read the runtime environment (e.g., "local", "test") and default to
	// "test" if the variable is not set.
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	// Construct the path for the base configuration file (e.g., "configs/.env.toml").
	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension

	// Construct the path for the environment-specific override file
	// (e.g., "configs/.env.test.toml").
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	// If the base configuration file exists, decode it into the baseConfig struct.
	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// If the environment-specific configuration file exists, decode it.
	// Any values in this file overwrite the values from the base config.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}
