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

// Package script_test contains the test suite for the script package.
// This file tests the generator against a fake text capability: prompt
// assembly, empty-response handling and the non-retryable fast path.
package script_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/script"
	test "github.com/jaycherian/gcp-go-slideshow-maker/internal/testutil"
)

// fakeTextModel is a scripted TextGenerator that records the prompts it
// receives.
type fakeTextModel struct {
	prompts []string
	text    string
	err     error
}

func (f *fakeTextModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

const testPromptTemplate = `Topic: {{.Topic}}
Scenes: {{.SceneCount}}
Example:
{{.ExampleScript}}`

func newTestGenerator(t *testing.T, model *fakeTextModel) *script.Generator {
	t.Helper()
	g, err := script.NewGenerator(
		model,
		ratelimit.New(1000).WithCapability(ratelimit.CapabilityScript, 1000),
		testPromptTemplate,
		4,
		time.Second,
		cloud.IsTransient)
	assert.NoError(t, err)
	return g
}

// TestGenerateRendersPromptWithTopic verifies that the rendered prompt
// carries the topic, the requested scene count and the format example.
func TestGenerateRendersPromptWithTopic(t *testing.T) {
	model := &fakeTextModel{text: test.GetTestScriptText()}
	g := newTestGenerator(t, model)

	raw, err := g.Generate(context.Background(), "The Water Cycle")
	assert.NoError(t, err)
	assert.Equal(t, test.GetTestScriptText(), raw)

	assert.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Topic: The Water Cycle")
	assert.Contains(t, model.prompts[0], "Scenes: 4")
	assert.Contains(t, model.prompts[0], "Narrator:")
}

// TestGenerateEmptyResponseFailsWithoutRetry verifies that an empty
// completion surfaces as EmptyGenerationError after a single call. An
// empty response is malformed output, not a transient provider fault.
func TestGenerateEmptyResponseFailsWithoutRetry(t *testing.T) {
	model := &fakeTextModel{text: ""}
	g := newTestGenerator(t, model)

	_, err := g.Generate(context.Background(), "The Water Cycle")

	var emptyErr *script.EmptyGenerationError
	assert.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "The Water Cycle", emptyErr.Topic)
	assert.Len(t, model.prompts, 1)
}

// TestGenerateNonRetryableFailurePropagatesImmediately verifies that a
// failure the transient classifier rejects is returned after one call,
// leaving the retry budget untouched.
func TestGenerateNonRetryableFailurePropagatesImmediately(t *testing.T) {
	providerErr := errors.New("invalid request: prompt was blocked")
	model := &fakeTextModel{err: providerErr}
	g := newTestGenerator(t, model)

	_, err := g.Generate(context.Background(), "The Water Cycle")
	assert.ErrorIs(t, err, providerErr)
	assert.Len(t, model.prompts, 1)
}

// TestInvalidTemplateRejectedAtConstruction verifies that a broken prompt
// template fails generator construction instead of the first request.
func TestInvalidTemplateRejectedAtConstruction(t *testing.T) {
	_, err := script.NewGenerator(
		&fakeTextModel{},
		ratelimit.New(1000),
		"{{.Unclosed",
		4,
		time.Second,
		cloud.IsTransient)
	assert.Error(t, err)
}
