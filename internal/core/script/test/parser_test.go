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
// This file tests the structural parser: scene/narration pairing,
// placeholder padding, excess truncation and fail-fast behavior on
// unusable model output.
package script_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/script"
	test "github.com/jaycherian/gcp-go-slideshow-maker/internal/testutil"
)

// TestParseWellFormedScript verifies that a fully formed script yields
// one scene per bracketed description, one narration per quoted Narrator
// line, with positional pairing and whitespace trimmed.
func TestParseWellFormedScript(t *testing.T) {
	scenes, narrations, err := script.Parse(test.GetTestScriptText())
	assert.NoError(t, err)
	assert.Len(t, scenes, 4)
	assert.Len(t, narrations, 4)

	assert.Equal(t, "A vast blue ocean under a bright sun, water vapor rising into the sky", scenes[0].Description)
	assert.Equal(t, "Rivers carry the water home to the sea, and the cycle begins all over again.", narrations[3].Text)

	for i := range scenes {
		assert.Equal(t, i, scenes[i].Index)
		assert.Equal(t, i, narrations[i].Index)
	}
}

// TestParsePadsMissingNarrations verifies that scenes without a matching
// Narrator line receive the placeholder text, so the audio fan-out always
// has one narration per scene.
func TestParsePadsMissingNarrations(t *testing.T) {
	scenes, narrations, err := script.Parse(test.GetTestScriptMissingNarrations())
	assert.NoError(t, err)
	assert.Len(t, scenes, 4)
	assert.Len(t, narrations, 4)

	assert.NotEqual(t, script.PlaceholderNarration, narrations[0].Text)
	assert.NotEqual(t, script.PlaceholderNarration, narrations[1].Text)
	assert.Equal(t, script.PlaceholderNarration, narrations[2].Text)
	assert.Equal(t, script.PlaceholderNarration, narrations[3].Text)
}

// TestParseDropsExcessNarrations verifies that when the model produces
// more Narrator lines than scenes, the excess is discarded and only the
// first N narrations survive.
func TestParseDropsExcessNarrations(t *testing.T) {
	raw := `[A honeybee landing on a purple flower]
Narrator: "Honeybees visit up to two thousand flowers in a single day."

[A cross-section of a hive showing hexagonal honeycomb]
Narrator: "Inside the hive, nectar is transformed into honey."

Narrator: "This line has no scene of its own."
Narrator: "Neither does this one."
`
	scenes, narrations, err := script.Parse(raw)
	assert.NoError(t, err)
	assert.Len(t, scenes, 2)
	assert.Len(t, narrations, 2)
	assert.Equal(t, "Inside the hive, nectar is transformed into honey.", narrations[1].Text)
}

// TestParseRejectsScriptWithoutScenes verifies fail-fast behavior: output
// with no bracketed descriptions is a parse error carrying the raw text,
// so the caller never spends an asset call on it.
func TestParseRejectsScriptWithoutScenes(t *testing.T) {
	raw := "I'm sorry, I can't produce a script for that topic."
	_, _, err := script.Parse(raw)

	var parseErr *script.ScriptParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, raw, parseErr.Raw)
}

// TestParseRejectsScriptWithoutNarrations verifies that descriptions with
// no Narrator lines at all are also rejected, rather than producing a
// silent slideshow of placeholders.
func TestParseRejectsScriptWithoutNarrations(t *testing.T) {
	raw := `[A mountain peak at dawn]
[The same peak at dusk]
`
	_, _, err := script.Parse(raw)

	var parseErr *script.ScriptParseError
	assert.True(t, errors.As(err, &parseErr))
}
