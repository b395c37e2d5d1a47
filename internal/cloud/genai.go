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
// generation providers. This file wraps the Vertex AI Generative AI client
// behind the narrow text-generation capability the script generator
// consumes. Rate limiting and retries are applied by the caller through
// the ratelimit and retry packages, so this wrapper stays a thin, typed
// handle: model name, generation config and a GenerateText method that
// flattens the multi-part response into a single string.
package cloud

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GenerativeTextModel binds a configured Vertex AI model name to its
// generation settings. It implements the script package's TextGenerator
// capability.
type GenerativeTextModel struct {
	GenerateContentConfig *genai.GenerateContentConfig // Sampling parameters, system instructions and safety settings.
	ModelName             string
	ModelHandle           *genai.Models
}

// NewGenerativeTextModel builds the typed handle for one configured agent
// model.
//
// Inputs:
//   - handle: The client's Models service.
//   - values: The TOML configuration for this model.
//
// Outputs:
//   - *GenerativeTextModel: The constructed wrapper.
func NewGenerativeTextModel(handle *genai.Models, values VertexAiLLMModel) *GenerativeTextModel {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](values.Temperature),
		TopP:              genai.Ptr[float32](values.TopP),
		TopK:              genai.Ptr[float32](values.TopK),
		MaxOutputTokens:   values.MaxTokens,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
		SafetySettings:    DefaultSafetySettings,
		ResponseMIMEType:  values.OutputFormat,
	}
	return &GenerativeTextModel{
		GenerateContentConfig: cfg,
		ModelName:             values.Model,
		ModelHandle:           handle,
	}
}

// GenerateText sends a single text prompt to the model and returns the
// concatenated text of all candidate parts. Markdown code fences are
// stripped because the model occasionally wraps plain-text output in them
// regardless of instructions.
//
// Inputs:
//   - ctx: The context for the request.
//   - prompt: The full user prompt.
//
// Outputs:
//   - string: The flattened response text, possibly empty.
//   - error: The provider error, if any.
func (m *GenerativeTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := m.ModelHandle.GenerateContent(ctx, m.ModelName, genai.Text(prompt), m.GenerateContentConfig)
	if err != nil {
		return "", err
	}

	value := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += part.Text
			}
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}
