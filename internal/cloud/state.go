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
// providers. This file initializes and holds all the client objects the
// pipeline needs: the Vertex AI GenAI client for script generation, the
// OpenAI-compatible client for image/speech/transcription, and the GCS
// client for artifact upload. It acts as a dependency injection
// container: a single ServiceClients struct is created at startup and
// passed to whatever needs it.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at application startup with the
//     loaded configuration.
//  2. It creates the GenAI client (Vertex backend) and wraps each
//     configured agent model in a GenerativeTextModel.
//  3. It creates the OpenAI-compatible wrapper for the remaining
//     generation capabilities.
//  4. When an upload bucket is configured it also creates the GCS client
//     and an uploader bound to that bucket.
//
// Structs:
//   - ServiceClients: A container holding all initialized provider clients.
//
// Functions:
//   - Close: Gracefully shuts down the clients that need it.
//   - NewCloudServiceClients: Factory for the fully wired container.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is a container for all the clients that talk to external
// services. Passing this one struct around keeps client lifetimes managed
// in a single place and makes tests able to substitute fakes behind the
// capability interfaces the core packages define.
type ServiceClients struct {
	StorageClient *storage.Client                 // Client for Google Cloud Storage, nil when uploads are disabled.
	GenAIClient   *genai.Client                   // Client for Vertex AI Generative AI.
	OpenAIModels  *OpenAIModels                   // Wrapper for image/speech/transcription capabilities.
	AgentModels   map[string]*GenerativeTextModel // Configured script models, keyed by logical name.
	Uploader      *GCSUploader                    // Artifact uploader, nil when no bucket is configured.
}

// Close releases client connections. The GenAI and OpenAI clients manage
// their own transports and have nothing to close.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
}

// NewCloudServiceClients initializes every provider client required by the
// configuration.
//
// Inputs:
//   - ctx: The root context for client lifecycles.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	agentModels := make(map[string]*GenerativeTextModel)
	for key, values := range config.AgentModels {
		agentModels[key] = NewGenerativeTextModel(gc.Models, values)
	}

	clients := &ServiceClients{
		GenAIClient:  gc,
		OpenAIModels: NewOpenAIModels(config.OpenAI),
		AgentModels:  agentModels,
	}

	if config.Storage.UploadBucket != "" {
		sc, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		clients.StorageClient = sc
		clients.Uploader = NewGCSUploader(sc, config.Storage.UploadBucket)
	}

	return clients, nil
}
