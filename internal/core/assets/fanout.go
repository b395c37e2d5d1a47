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
// This file coordinates the fan-out: the image and audio capabilities run
// concurrently with each other, images are dispatched in fixed-size chunks
// with a pause between chunks (the image endpoint throttles bursts harder
// than its nominal rate suggests), and audio clips all dispatch at once.
// Every worker writes into its own slot of a pre-sized result slice, so
// output order always matches script order no matter which call finishes
// first.
package assets

import (
	"context"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

// Coordinator runs the full asset fan-out for one run.
type Coordinator struct {
	Images     *ImageGenerator
	Audio      *AudioGenerator
	ChunkSize  int           // images dispatched per chunk
	ChunkPause time.Duration // pause between image chunks
}

// NewCoordinator wires the coordinator. A chunk size below one is treated
// as one.
func NewCoordinator(images *ImageGenerator, audio *AudioGenerator, chunkSize int, chunkPause time.Duration) *Coordinator {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Coordinator{
		Images:     images,
		Audio:      audio,
		ChunkSize:  chunkSize,
		ChunkPause: chunkPause,
	}
}

// GenerateAll produces every image and narration clip for a run.
//
// Both result slices are index-aligned with the inputs. The narrations
// slice must already be the same length as the scenes slice; the
// orchestrator guarantees that after parsing.
//
// On failure the first error encountered (in index order, images before
// audio) is returned after all in-flight work settles; artifacts that
// completed before the failure stay on disk for inspection.
func (c *Coordinator) GenerateAll(ctx context.Context, run *model.RunContext, scenes []model.Scene, narrations []model.Narration) ([]*model.Artifact, []*model.Artifact, error) {
	images := make([]*model.Artifact, len(scenes))
	imageErrs := make([]error, len(scenes))
	clips := make([]*model.Artifact, len(narrations))
	clipErrs := make([]error, len(narrations))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c.generateImages(ctx, run, scenes, images, imageErrs)
	}()

	go func() {
		defer wg.Done()
		var audioWg sync.WaitGroup
		for i := range narrations {
			audioWg.Add(1)
			go func(i int) {
				defer audioWg.Done()
				clips[i], clipErrs[i] = c.Audio.Generate(ctx, run, i, narrations[i].Text)
			}(i)
		}
		audioWg.Wait()
	}()

	wg.Wait()

	for _, err := range imageErrs {
		if err != nil {
			return nil, nil, err
		}
	}
	for _, err := range clipErrs {
		if err != nil {
			return nil, nil, err
		}
	}
	return images, clips, nil
}

// generateImages walks the scenes in chunks, running each chunk's calls in
// parallel and pausing between chunks. A failed chunk stops dispatching
// further chunks; there is no point spending quota on images the run can
// no longer use.
func (c *Coordinator) generateImages(ctx context.Context, run *model.RunContext, scenes []model.Scene, out []*model.Artifact, errs []error) {
	for start := 0; start < len(scenes); start += c.ChunkSize {
		end := start + c.ChunkSize
		if end > len(scenes) {
			end = len(scenes)
		}

		var chunkWg sync.WaitGroup
		for i := start; i < end; i++ {
			chunkWg.Add(1)
			go func(i int) {
				defer chunkWg.Done()
				out[i], errs[i] = c.Images.Generate(ctx, run, i, scenes[i].Description)
			}(i)
		}
		chunkWg.Wait()

		for i := start; i < end; i++ {
			if errs[i] != nil {
				return
			}
		}

		if end < len(scenes) && c.ChunkPause > 0 {
			select {
			case <-time.After(c.ChunkPause):
			case <-ctx.Done():
				return
			}
		}
	}
}
