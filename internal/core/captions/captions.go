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

// Package captions produces the word-level caption track for a finished
// narration recording. The combined audio file is submitted to the
// transcription capability with word-level timestamp granularity; the
// resulting word list is both returned to the orchestrator and persisted
// as transcription.json in the project directory so the caption data
// survives independently of the manifest.
//
// Captions are an enhancement, not a requirement: the orchestrator treats
// a caption failure as non-fatal and ships the manifest without them.
package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/retry"
)

// TranscriptionFileName is where the word timing data is persisted inside
// the project directory.
const TranscriptionFileName = "transcription.json"

// Transcriber is the transcription capability consumed by the generator.
// The cloud package's OpenAIModels implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*cloud.Transcription, error)
}

// NoTranscriptionDataError reports a transcription response that carried
// no word-level timing, which makes captioning impossible.
type NoTranscriptionDataError struct {
	AudioPath string
}

func (e *NoTranscriptionDataError) Error() string {
	return fmt.Sprintf("transcription of %s returned no word timing data", e.AudioPath)
}

// Generator produces the caption track for a run.
type Generator struct {
	transcriber Transcriber
	limiters    *ratelimit.RateLimiterSet
	spec        retry.Spec
}

// NewGenerator binds the generator to its capability and the shared rate
// limiters.
func NewGenerator(
	transcriber Transcriber,
	limiters *ratelimit.RateLimiterSet,
	retryable func(error) bool) *Generator {
	return &Generator{
		transcriber: transcriber,
		limiters:    limiters,
		spec: retry.Spec{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Second,
			Retryable:    retryable,
		},
	}
}

// Generate transcribes the combined narration track and persists the word
// timing data alongside the other run artifacts.
//
// Inputs:
//   - ctx: The context for the whole operation, including retries.
//   - run: The run workspace; transcription.json is written to its
//     project directory.
//   - combinedAudioPath: The combined narration file to transcribe.
//
// Outputs:
//   - string: The full transcript text.
//   - []*model.Word: The word list with start/end offsets in seconds.
//   - error: *NoTranscriptionDataError, or the provider's last failure.
func (g *Generator) Generate(ctx context.Context, run *model.RunContext, combinedAudioPath string) (string, []*model.Word, error) {
	result, err := retry.Do(ctx, g.spec, func(ctx context.Context) (*cloud.Transcription, error) {
		if err := g.limiters.Acquire(ctx, ratelimit.CapabilityTranscription); err != nil {
			return nil, err
		}
		return g.transcriber.Transcribe(ctx, combinedAudioPath)
	})
	if err != nil {
		return "", nil, err
	}
	if len(result.Words) == 0 {
		return "", nil, &NoTranscriptionDataError{AudioPath: combinedAudioPath}
	}

	words := make([]*model.Word, 0, len(result.Words))
	for _, w := range result.Words {
		words = append(words, &model.Word{Text: w.Text, Start: w.Start, End: w.End})
	}

	if err := g.persist(run, result.Text, words); err != nil {
		return "", nil, err
	}
	return result.Text, words, nil
}

// persist writes the transcript and word timings to transcription.json.
func (g *Generator) persist(run *model.RunContext, text string, words []*model.Word) error {
	payload := struct {
		Text  string        `json:"text"`
		Words []*model.Word `json:"words"`
	}{Text: text, Words: words}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding transcription: %w", err)
	}
	target := filepath.Join(run.ProjectDir, TranscriptionFileName)
	if err := os.WriteFile(target, raw, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", TranscriptionFileName, err)
	}
	return nil
}
