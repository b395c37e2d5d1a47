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

// Package assets generates the per-scene media that feeds the slideshow:
// one still image per scene description and one narration clip per
// narration line. Each generator owns its capability's retry budget and
// per-attempt timeout; admission against provider quotas goes through the
// shared rate limiter set before every attempt, including retries.
//
// This file implements image generation. Payloads are validated before
// they touch disk: a zero-length body or a body that does not sniff as an
// image is treated as a failed attempt, because a corrupt frame would
// otherwise surface much later as an opaque encoder error.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/retry"
)

// imageAttemptTimeout bounds a single provider call. Image synthesis is
// the slowest capability in the pipeline; anything beyond this is treated
// as a hung connection and retried.
const imageAttemptTimeout = 30 * time.Second

// ImageSynthesizer is the image capability consumed by the generator. The
// cloud package's OpenAIModels implements it.
type ImageSynthesizer interface {
	SynthesizeImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageGenerator turns one scene description into a persisted still image.
type ImageGenerator struct {
	synth    ImageSynthesizer
	limiters *ratelimit.RateLimiterSet
	spec     retry.Spec
}

// NewImageGenerator binds the generator to its capability and the shared
// rate limiters. The retryable predicate decides which provider failures
// consume the retry budget.
func NewImageGenerator(
	synth ImageSynthesizer,
	limiters *ratelimit.RateLimiterSet,
	retryable func(error) bool) *ImageGenerator {
	return &ImageGenerator{
		synth:    synth,
		limiters: limiters,
		spec: retry.Spec{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Second,
			Retryable:    retryable,
		},
	}
}

// Generate synthesizes and persists the image for one scene.
//
// Inputs:
//   - ctx: The context for the whole operation, including retries.
//   - run: The run workspace the image is written into.
//   - index: The 0-based scene index, used only for error reporting.
//   - description: The scene description used as the image prompt.
//
// Outputs:
//   - *model.Artifact: The persisted image with its public path.
//   - error: *AssetGenerationError wrapping the final failure.
func (g *ImageGenerator) Generate(ctx context.Context, run *model.RunContext, index int, description string) (*model.Artifact, error) {
	raw, err := retry.Do(ctx, g.spec, func(ctx context.Context) ([]byte, error) {
		if err := g.limiters.Acquire(ctx, ratelimit.CapabilityImage); err != nil {
			return nil, err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, imageAttemptTimeout)
		defer cancel()

		payload, err := g.synth.SynthesizeImage(attemptCtx, description)
		if err != nil {
			return nil, err
		}
		if len(payload) == 0 {
			return nil, errors.New("provider returned an empty image payload")
		}
		if !filetype.IsImage(payload) {
			return nil, errors.New("provider payload is not an image")
		}
		return payload, nil
	})
	if err != nil {
		return nil, &AssetGenerationError{Kind: "image", Index: index, Err: err}
	}

	fileName := fmt.Sprintf("scene_%s.png", model.FileSlug(description))
	contentPath := filepath.Join(run.ImagesDir, fileName)
	if err := os.WriteFile(contentPath, raw, 0644); err != nil {
		return nil, &AssetGenerationError{Kind: "image", Index: index, Err: err}
	}

	return &model.Artifact{
		SourceText:  description,
		ContentPath: contentPath,
		PublicPath:  run.PublicPath("images", fileName),
	}, nil
}
