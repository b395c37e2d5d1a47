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
// generation pipeline. A Run moves through a fixed sequence of stages,
// accumulating artifacts (images, audio clips, the combined narration
// track, the rendered video and an optional caption track) until the
// final Manifest is ready to be returned to the caller.
//
// Structs:
//   - Artifact: A generated file with its filesystem and public paths.
//   - Scene: One visual segment of the video, backed by one still image.
//   - Narration: The spoken-word text for one scene and its audio clip.
//   - Word: A single transcribed word with start/end offsets in seconds.
//   - Manifest: The completed result of a Run, returned to the caller.
package model

// Stage identifies a step in the Run state machine. Stages advance strictly
// in the order declared below; any failure moves the Run to StageFailed
// with the stage it failed in recorded alongside the error.
type Stage string

const (
	StageCreated            Stage = "created"
	StageScriptGenerated    Stage = "script_generated"
	StageParsed             Stage = "parsed"
	StageAssetsGenerating   Stage = "assets_generating"
	StageAssetsComplete     Stage = "assets_complete"
	StageAudioCombined      Stage = "audio_combined"
	StageDurationKnown      Stage = "duration_known"
	StageVideoRendering     Stage = "video_rendering"
	StageVideoComplete      Stage = "video_complete"
	StageCaptionsGenerating Stage = "captions_generating"
	StageCaptionsComplete   Stage = "captions_complete"
	StageManifestReady      Stage = "manifest_ready"
	StageFailed             Stage = "failed"
)

// Artifact is any generated file owned by a Run. ContentPath is where the
// bytes live on disk, PublicPath is the externally addressable location
// (a path under the generated tree, or an object storage URL once
// uploaded), and SourceText is the prompt or narration that produced it.
type Artifact struct {
	SourceText  string `json:"source_text,omitempty"`
	PublicPath  string `json:"path"`
	ContentPath string `json:"-"`
}

// Scene is one visual segment of the slideshow. Index is the 0-based
// position in the script; the image is nil until asset generation
// completes.
type Scene struct {
	Index       int       `json:"index"`
	Description string    `json:"description"`
	Image       *Artifact `json:"image,omitempty"`
}

// Narration is the spoken text paired with Scene at the same index.
// Start and Duration are derived from the final combined audio track,
// never authored.
type Narration struct {
	Index    int       `json:"index"`
	Text     string    `json:"text"`
	Audio    *Artifact `json:"audio,omitempty"`
	Start    float64   `json:"start_seconds"`
	Duration float64   `json:"duration_seconds"`
}

// Word is a single word from the caption track with offsets expressed
// against the combined narration timeline.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Manifest is the immutable result of a completed Run. It is cached by
// topic and handed to the presentation layer as-is.
type Manifest struct {
	RunID            string       `json:"run_id"`
	Topic            string       `json:"topic"`
	Slug             string       `json:"slug"`
	Timestamp        string       `json:"timestamp"`
	ProjectPath      string       `json:"project_path"`
	Script           string       `json:"script"`
	Scenes           []*Scene     `json:"scenes"`
	Narrations       []*Narration `json:"narrations"`
	CombinedAudio    *Artifact    `json:"combined_audio"`
	Video            *Artifact    `json:"video"`
	TotalDuration    float64      `json:"total_duration"`
	DurationPerScene float64      `json:"duration_per_scene"`
	CaptionText      string       `json:"caption_text,omitempty"`
	Captions         []*Word      `json:"captions,omitempty"`
}
