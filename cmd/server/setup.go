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

// Package main contains the setup and initialization logic for the
// application's state. This file builds the centralized state manager
// that holds the shared dependencies: configuration, provider clients,
// the process-wide rate limiters, the manifest cache and the fully wired
// pipeline orchestrator.
//
// Functions:
//   - SetupOS: Points the configuration loader at the configs directory
//     and the runtime environment.
//   - GetConfig: A singleton loader for the TOML configuration.
//   - InitState: Creates all clients and wires the orchestrator.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/assets"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/captions"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/media"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/pipeline"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/script"
)

// ScriptAgentName is the key in the agent_models config table naming the
// model used for script generation.
const ScriptAgentName = "script-writer"

// StateManager holds all the shared dependencies for the application,
// acting as a centralized container so nothing hangs off package-level
// globals except the manager itself.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	cache        *pipeline.RunCache
	orchestrator *pipeline.Orchestrator
}

// state is the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files. The runtime defaults to "local" and can be
// overridden by setting the variable before launch.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig provides a singleton instance of the application
// configuration, loading it from the TOML files on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state: provider clients,
// the rate limiter set, the per-capability generators, the media
// assembler and the orchestrator that ties them together.
//
// Inputs:
//   - ctx: The root context for client lifecycles.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	scriptModel, ok := cloudClients.AgentModels[ScriptAgentName]
	if !ok {
		log.Fatalf("no %q entry in agent_models configuration\n", ScriptAgentName)
	}

	limiters := ratelimit.New(config.RateLimits.GlobalPerSecond).
		WithCapability(ratelimit.CapabilityScript, config.RateLimits.ScriptPerSecond).
		WithCapability(ratelimit.CapabilityImage, config.RateLimits.ImagePerSecond).
		WithCapability(ratelimit.CapabilitySpeech, config.RateLimits.SpeechPerSecond).
		WithCapability(ratelimit.CapabilityTranscription, config.RateLimits.TranscriptionPerSecond)

	callTimeout := time.Duration(config.Pipeline.CallTimeoutMillis) * time.Millisecond
	scriptGenerator, err := script.NewGenerator(
		scriptModel,
		limiters,
		config.PromptTemplates.ScriptPrompt,
		config.Pipeline.SceneCount,
		callTimeout,
		cloud.IsTransient)
	if err != nil {
		log.Fatalf("invalid script prompt template: %v\n", err)
	}

	coordinator := assets.NewCoordinator(
		assets.NewImageGenerator(cloudClients.OpenAIModels, limiters, cloud.IsTransient),
		assets.NewAudioGenerator(cloudClients.OpenAIModels, limiters, cloud.IsTransient),
		config.Pipeline.ImageChunkSize,
		time.Duration(config.Pipeline.ChunkPauseMillis)*time.Millisecond)

	captionGenerator := captions.NewGenerator(cloudClients.OpenAIModels, limiters, cloud.IsTransient)

	// A nil *GCSUploader must stay a nil interface or the orchestrator
	// would try to upload through it.
	var uploader pipeline.Uploader
	if cloudClients.Uploader != nil {
		uploader = cloudClients.Uploader
	}

	state.cache = pipeline.NewRunCache(config.Cache.MaxEntries, time.Duration(config.Cache.TTLSeconds)*time.Second)
	state.orchestrator = pipeline.NewOrchestrator(
		scriptGenerator,
		script.Parse,
		coordinator,
		captionGenerator,
		media.NewFFmpeg(config.MediaTools),
		uploader,
		state.cache,
		config.Storage.OutputDir,
		config.Storage.PublicBasePath,
		slog.Default())
}
