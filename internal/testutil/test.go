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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// script text for the parser and pipeline tests.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are read once per
// test binary.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience to cut
// boilerplate in test bodies.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestScriptText returns a well-formed four-scene script in the exact
// grammar the generator is instructed to produce. Used as canned model
// output in parser and pipeline tests.
func GetTestScriptText() string {
	return `[A vast blue ocean under a bright sun, water vapor rising into the sky]
Narrator: "Every day, the sun heats our oceans, turning water into invisible vapor that rises high into the atmosphere."

[White clouds forming and drifting over green rolling hills]
Narrator: "As the vapor cools, it condenses into billions of tiny droplets, forming the clouds that drift above us."

[Heavy rain falling on a forest, droplets splashing on broad leaves]
Narrator: "When the droplets grow too heavy, they fall back to Earth as rain, feeding rivers, lakes and forests."

[A winding river flowing through a valley back toward the sea at sunset]
Narrator: "Rivers carry the water home to the sea, and the cycle begins all over again."
`
}

// GetTestScriptMissingNarrations returns a script whose last two scenes
// have no narration lines, for exercising the parser's placeholder
// padding.
func GetTestScriptMissingNarrations() string {
	return `[A red fox stepping through fresh snow in a quiet forest]
Narrator: "In the depths of winter, the red fox relies on its remarkable hearing to find food."

[The fox leaping high into the air, diving nose-first into the snow]
Narrator: "It can pinpoint a mouse moving under two feet of snow."

[The fox trotting away across a frozen lake at dusk]

[Stars appearing over the silhouette of the treeline]
`
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test override file.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The loader will look for .env.test.toml overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration, loading
// it on first use and caching it for the rest of the test run.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
