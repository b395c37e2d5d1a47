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

// Package model defines the core data structures for the slideshow
// generation pipeline. This file holds the per-run workspace description:
// the slug/timestamp identity of a run and the directory layout every
// stage writes into. It replaces ad-hoc string assembly at call sites so
// artifact paths stay deterministic and collision-free across runs.
package model

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// maxFileSlug caps the slug length used inside artifact file names so a
// long scene description never produces an unwieldy path.
const maxFileSlug = 50

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Slugify lowercases s and replaces every non-alphanumeric character with
// an underscore. The result is stable for a given input, which makes it
// part of the artifact path contract.
func Slugify(s string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(s, "_"))
}

// FileSlug is Slugify truncated for use inside a file name.
func FileSlug(s string) string {
	slug := Slugify(s)
	if len(slug) > maxFileSlug {
		slug = slug[:maxFileSlug]
	}
	return slug
}

// RunContext carries the identity and filesystem layout of one run. It is
// created by the orchestrator before any generation call and passed to
// every stage; stages read from it and never mutate it, except for the
// Extras map which holds free-form stage annotations for logging.
type RunContext struct {
	RunID        string
	Topic        string
	Slug         string
	Timestamp    string
	ProjectDir   string
	ImagesDir    string
	AudioDir     string
	VideoDir     string
	PublicPrefix string
	Extras       map[string]string
}

// NewRunContext derives the workspace layout for a topic. The project
// directory name combines the topic slug with a millisecond timestamp so
// repeated runs for the same topic never collide on disk.
//
// Inputs:
//   - runID: The unique identifier assigned to this run.
//   - topic: The validated user topic.
//   - outputDir: The root directory all runs are written under.
//   - publicBase: The URL path prefix the output tree is served from.
//   - now: The run start time.
//
// Outputs:
//   - *RunContext: The workspace description. No directories are created.
func NewRunContext(runID, topic, outputDir, publicBase string, now time.Time) *RunContext {
	slug := Slugify(topic)
	timestamp := fmt.Sprintf("%d", now.UnixMilli())
	projectDir := filepath.Join(outputDir, fmt.Sprintf("%s_%s", slug, timestamp))
	return &RunContext{
		RunID:        runID,
		Topic:        topic,
		Slug:         slug,
		Timestamp:    timestamp,
		ProjectDir:   projectDir,
		ImagesDir:    filepath.Join(projectDir, "images"),
		AudioDir:     filepath.Join(projectDir, "audio"),
		VideoDir:     filepath.Join(projectDir, "video"),
		PublicPrefix: path.Join(publicBase, fmt.Sprintf("%s_%s", slug, timestamp)),
		Extras:       make(map[string]string),
	}
}

// PublicPath maps a path inside the project directory to its externally
// addressable form under the public prefix.
func (r *RunContext) PublicPath(subDir, fileName string) string {
	return path.Join(r.PublicPrefix, subDir, fileName)
}
