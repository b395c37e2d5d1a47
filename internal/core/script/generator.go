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

// Package script turns a topic into an ordered list of scene/narration
// pairs. This file implements the generation half: one rate-limited,
// retried call to the text-generation capability with a fixed instruction
// template that requests an exact number of scenes in the bracket/quote
// grammar the parser enforces.
//
// The generator does not validate scene count or structure - that is the
// parser's job. Its only structural check is that the capability returned
// any text at all.
package script

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/retry"
)

// TextGenerator is the narrow text-generation capability the generator
// consumes. The cloud package's GenerativeTextModel implements it.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// EmptyGenerationError reports that the text capability returned no
// content for a topic.
type EmptyGenerationError struct {
	Topic string
}

func (e *EmptyGenerationError) Error() string {
	return fmt.Sprintf("no script text in response for topic %q", e.Topic)
}

// Generator issues the script generation call.
type Generator struct {
	model    TextGenerator
	limiters *ratelimit.RateLimiterSet
	template *template.Template
	spec     retry.Spec
	timeout  time.Duration

	// SceneCount is the exact number of scenes the prompt requests.
	SceneCount int
}

// promptParams is the data injected into the prompt template.
type promptParams struct {
	Topic         string
	SceneCount    int
	ExampleScript string
}

// NewGenerator compiles the prompt template and binds the generator to its
// capability, rate limiters and retry policy.
//
// Inputs:
//   - model: The text-generation capability.
//   - limiters: The shared admission-control buckets.
//   - promptTemplate: The Go template text for the instruction prompt.
//   - sceneCount: The exact number of scenes to request.
//   - timeout: The per-attempt timeout for the outbound call.
//   - retryable: Predicate narrowing which failures are retried.
//
// Outputs:
//   - *Generator: The constructed generator.
//   - error: A template compilation error.
func NewGenerator(
	model TextGenerator,
	limiters *ratelimit.RateLimiterSet,
	promptTemplate string,
	sceneCount int,
	timeout time.Duration,
	retryable func(error) bool) (*Generator, error) {

	tmpl, err := template.New("script-prompt").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing script prompt template: %w", err)
	}
	return &Generator{
		model:      model,
		limiters:   limiters,
		template:   tmpl,
		timeout:    timeout,
		SceneCount: sceneCount,
		spec: retry.Spec{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			Retryable:    retryable,
		},
	}, nil
}

// Generate produces the raw script text for a topic. The call acquires a
// global plus script-capability token before each attempt so retries are
// billed against the provider quota like first attempts.
//
// Inputs:
//   - ctx: The context for the whole operation, including retries.
//   - topic: The user-supplied topic string.
//
// Outputs:
//   - string: The raw script text.
//   - error: *EmptyGenerationError, or the provider's last failure.
func (g *Generator) Generate(ctx context.Context, topic string) (string, error) {
	var prompt bytes.Buffer
	err := g.template.Execute(&prompt, promptParams{
		Topic:         topic,
		SceneCount:    g.SceneCount,
		ExampleScript: model.GetExampleScript(),
	})
	if err != nil {
		return "", fmt.Errorf("rendering script prompt: %w", err)
	}

	return retry.Do(ctx, g.spec, func(ctx context.Context) (string, error) {
		if err := g.limiters.Acquire(ctx, ratelimit.CapabilityScript); err != nil {
			return "", err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.model.GenerateText(attemptCtx, prompt.String())
		if err != nil {
			return "", err
		}
		if text == "" {
			// An empty completion is a malformed-output condition, not a
			// transient fault: surface it without burning the retry budget.
			return "", &EmptyGenerationError{Topic: topic}
		}
		return text, nil
	})
}
