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

// Package assets generates the per-scene media that feeds the slideshow.
// This file implements narration audio. The provider returns audio as a
// stream; the generator buffers the stream completely in memory before a
// single write to disk, so a connection dropped mid-stream fails the
// attempt cleanly instead of leaving a truncated clip that the concat
// stage would happily stitch into the final track.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/retry"
)

// SpeechSynthesizer is the speech capability consumed by the generator.
// The cloud package's OpenAIModels implements it.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) (io.ReadCloser, error)
}

// AudioGenerator turns one narration line into a persisted mp3 clip.
type AudioGenerator struct {
	synth    SpeechSynthesizer
	limiters *ratelimit.RateLimiterSet
	spec     retry.Spec
}

// NewAudioGenerator binds the generator to its capability and the shared
// rate limiters. Speech synthesis fails transiently more often than image
// generation, so the budget trades a shorter initial delay for more
// attempts.
func NewAudioGenerator(
	synth SpeechSynthesizer,
	limiters *ratelimit.RateLimiterSet,
	retryable func(error) bool) *AudioGenerator {
	return &AudioGenerator{
		synth:    synth,
		limiters: limiters,
		spec: retry.Spec{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			Retryable:    retryable,
		},
	}
}

// Generate synthesizes and persists the narration clip for one scene.
//
// Inputs:
//   - ctx: The context for the whole operation, including retries.
//   - run: The run workspace the clip is written into.
//   - index: The 0-based narration index, used only for error reporting.
//   - text: The narration text to speak.
//
// Outputs:
//   - *model.Artifact: The persisted clip with its public path.
//   - error: *AssetGenerationError wrapping the final failure.
func (g *AudioGenerator) Generate(ctx context.Context, run *model.RunContext, index int, text string) (*model.Artifact, error) {
	raw, err := retry.Do(ctx, g.spec, func(ctx context.Context) ([]byte, error) {
		if err := g.limiters.Acquire(ctx, ratelimit.CapabilitySpeech); err != nil {
			return nil, err
		}
		stream, err := g.synth.SynthesizeSpeech(ctx, text)
		if err != nil {
			return nil, err
		}
		defer func() { _ = stream.Close() }()

		payload, err := io.ReadAll(stream)
		if err != nil {
			return nil, fmt.Errorf("reading speech stream: %w", err)
		}
		if len(payload) == 0 {
			return nil, errors.New("provider returned an empty audio stream")
		}
		return payload, nil
	})
	if err != nil {
		return nil, &AssetGenerationError{Kind: "audio", Index: index, Err: err}
	}

	fileName := fmt.Sprintf("narration_%s.mp3", model.FileSlug(text))
	contentPath := filepath.Join(run.AudioDir, fileName)
	if err := os.WriteFile(contentPath, raw, 0644); err != nil {
		return nil, &AssetGenerationError{Kind: "audio", Index: index, Err: err}
	}

	return &model.Artifact{
		SourceText:  text,
		ContentPath: contentPath,
		PublicPath:  run.PublicPath("audio", fileName),
	}, nil
}
