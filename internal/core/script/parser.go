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
// pairs. This file implements the parsing half: structural extraction of
// the bracket/quote grammar from raw model output.
//
// The grammar is intentionally narrow. A scene description is any text
// inside square brackets; a narration is any text inside double quotes
// following the literal marker `Narrator: `. Everything else in the
// output - headings, stage directions, commentary the model adds despite
// the instructions - is ignored. The parser pairs the i-th description
// with the i-th narration.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

// PlaceholderNarration fills the audio slot for a scene whose narration
// line is missing from the model output.
const PlaceholderNarration = "No narration provided"

var (
	sceneDescriptionRegex = regexp.MustCompile(`\[(.*?)\]`)
	narrationRegex        = regexp.MustCompile(`Narrator: "(.*?)"`)
)

// ScriptParseError reports that the raw text contained no extractable
// scene descriptions or no narrations at all. It carries the raw text so
// callers can log what the model actually produced.
type ScriptParseError struct {
	Raw string
}

func (e *ScriptParseError) Error() string {
	return fmt.Sprintf("no usable scene structure in script (%d bytes of raw text)", len(e.Raw))
}

// Parse extracts scene/narration pairs from raw script text.
//
// The scene list drives the pipeline: its length is the number of images,
// narrations and slideshow segments downstream. Narrations are aligned to
// it positionally - a script with fewer narrations than scenes gets the
// placeholder text for the tail scenes, and a script with more narrations
// than scenes has the excess dropped.
//
// Inputs:
//   - raw: The raw model output.
//
// Outputs:
//   - []model.Scene: The ordered scene descriptions.
//   - []model.Narration: The narrations, exactly one per scene.
//   - error: *ScriptParseError when no scene description is present.
func Parse(raw string) ([]model.Scene, []model.Narration, error) {
	descriptions := sceneDescriptionRegex.FindAllStringSubmatch(raw, -1)
	quoted := narrationRegex.FindAllStringSubmatch(raw, -1)
	// A script with no scenes cannot drive the pipeline, and a script with
	// scenes but no narration at all means the model ignored the grammar
	// entirely. Both fail before any asset call is made.
	if len(descriptions) == 0 || len(quoted) == 0 {
		return nil, nil, &ScriptParseError{Raw: raw}
	}

	scenes := make([]model.Scene, 0, len(descriptions))
	narrations := make([]model.Narration, 0, len(descriptions))
	for i, match := range descriptions {
		scenes = append(scenes, model.Scene{
			Index:       i,
			Description: strings.TrimSpace(match[1]),
		})
		text := PlaceholderNarration
		if i < len(quoted) {
			text = strings.TrimSpace(quoted[i][1])
		}
		narrations = append(narrations, model.Narration{
			Index: i,
			Text:  text,
		})
	}
	return scenes, narrations, nil
}
