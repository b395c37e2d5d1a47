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

// Package assets_test contains the test suite for the assets package:
// the image and audio generators against fake capabilities, and the
// order-preservation guarantee of the concurrent fan-out.
package assets_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/assets"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
)

// pngPayload is a minimal buffer carrying the PNG magic bytes so the
// generator's content sniff accepts it.
var pngPayload = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 64)...)

type fakeImageSynth struct {
	mu       sync.Mutex
	prompts  []string
	failFor  string
	returned []byte
}

func (f *fakeImageSynth) SynthesizeImage(_ context.Context, prompt string) ([]byte, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.failFor != "" && strings.Contains(prompt, f.failFor) {
		return nil, errors.New("invalid prompt rejected by provider")
	}
	if f.returned != nil {
		return f.returned, nil
	}
	return pngPayload, nil
}

type fakeSpeechSynth struct{}

func (f *fakeSpeechSynth) SynthesizeSpeech(_ context.Context, text string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("mp3-bytes-for:" + text)), nil
}

func newTestRun(t *testing.T) *model.RunContext {
	t.Helper()
	run := model.NewRunContext("run-1", "Test Topic", t.TempDir(), "/generated", time.Now())
	for _, dir := range []string{run.ImagesDir, run.AudioDir, run.VideoDir} {
		assert.NoError(t, os.MkdirAll(dir, 0755))
	}
	return run
}

func fastLimiters() *ratelimit.RateLimiterSet {
	return ratelimit.New(1000).
		WithCapability(ratelimit.CapabilityImage, 1000).
		WithCapability(ratelimit.CapabilitySpeech, 1000)
}

func sceneFixtures(n int) ([]model.Scene, []model.Narration) {
	scenes := make([]model.Scene, n)
	narrations := make([]model.Narration, n)
	for i := 0; i < n; i++ {
		scenes[i] = model.Scene{Index: i, Description: fmt.Sprintf("scene number %d in the story", i)}
		narrations[i] = model.Narration{Index: i, Text: fmt.Sprintf("narration line %d", i)}
	}
	return scenes, narrations
}

// TestGenerateAllPreservesOrder verifies both result slices align with
// script order regardless of completion order, across chunk boundaries.
func TestGenerateAllPreservesOrder(t *testing.T) {
	run := newTestRun(t)
	coordinator := assets.NewCoordinator(
		assets.NewImageGenerator(&fakeImageSynth{}, fastLimiters(), cloud.IsTransient),
		assets.NewAudioGenerator(&fakeSpeechSynth{}, fastLimiters(), cloud.IsTransient),
		2, 0)

	scenes, narrations := sceneFixtures(5)
	images, clips, err := coordinator.GenerateAll(context.Background(), run, scenes, narrations)
	assert.NoError(t, err)
	assert.Len(t, images, 5)
	assert.Len(t, clips, 5)

	for i := range scenes {
		assert.Equal(t, scenes[i].Description, images[i].SourceText)
		assert.Equal(t, narrations[i].Text, clips[i].SourceText)
		assert.FileExists(t, images[i].ContentPath)
		assert.FileExists(t, clips[i].ContentPath)
	}
}

// TestGenerateAllArtifactNaming verifies the persisted files follow the
// slug naming convention inside the run workspace.
func TestGenerateAllArtifactNaming(t *testing.T) {
	run := newTestRun(t)
	coordinator := assets.NewCoordinator(
		assets.NewImageGenerator(&fakeImageSynth{}, fastLimiters(), cloud.IsTransient),
		assets.NewAudioGenerator(&fakeSpeechSynth{}, fastLimiters(), cloud.IsTransient),
		3, 0)

	scenes := []model.Scene{{Index: 0, Description: "A Tall Ship at Sea!"}}
	narrations := []model.Narration{{Index: 0, Text: "Ships once carried all the world's trade."}}

	images, clips, err := coordinator.GenerateAll(context.Background(), run, scenes, narrations)
	assert.NoError(t, err)
	assert.Contains(t, images[0].ContentPath, "scene_a_tall_ship_at_sea_.png")
	assert.Contains(t, clips[0].ContentPath, "narration_ships_once_carried_all_the_world_s_trade_.mp3")
	assert.Contains(t, images[0].PublicPath, "/generated/")
}

// TestGenerateAllImageFailureFailsRun verifies a single failed image
// surfaces as an AssetGenerationError carrying the scene index.
func TestGenerateAllImageFailureFailsRun(t *testing.T) {
	run := newTestRun(t)
	coordinator := assets.NewCoordinator(
		assets.NewImageGenerator(&fakeImageSynth{failFor: "scene number 1"}, fastLimiters(), cloud.IsTransient),
		assets.NewAudioGenerator(&fakeSpeechSynth{}, fastLimiters(), cloud.IsTransient),
		2, 0)

	scenes, narrations := sceneFixtures(3)
	_, _, err := coordinator.GenerateAll(context.Background(), run, scenes, narrations)

	var assetErr *assets.AssetGenerationError
	assert.True(t, errors.As(err, &assetErr))
	assert.Equal(t, "image", assetErr.Kind)
	assert.Equal(t, 1, assetErr.Index)
}

// TestImageGeneratorRejectsNonImagePayload verifies payload validation: a
// body that does not sniff as an image never reaches disk.
func TestImageGeneratorRejectsNonImagePayload(t *testing.T) {
	run := newTestRun(t)
	generator := assets.NewImageGenerator(
		&fakeImageSynth{returned: []byte("this is not an image")},
		fastLimiters(),
		cloud.IsTransient)

	_, err := generator.Generate(context.Background(), run, 0, "a scene")
	var assetErr *assets.AssetGenerationError
	assert.True(t, errors.As(err, &assetErr))
	assert.Contains(t, err.Error(), "not an image")

	entries, readErr := os.ReadDir(run.ImagesDir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries)
}

// TestAudioGeneratorBuffersStreamToDisk verifies the full stream lands in
// the clip file.
func TestAudioGeneratorBuffersStreamToDisk(t *testing.T) {
	run := newTestRun(t)
	generator := assets.NewAudioGenerator(&fakeSpeechSynth{}, fastLimiters(), cloud.IsTransient)

	artifact, err := generator.Generate(context.Background(), run, 0, "hello world")
	assert.NoError(t, err)

	content, err := os.ReadFile(artifact.ContentPath)
	assert.NoError(t, err)
	assert.Equal(t, "mp3-bytes-for:hello world", string(content))
}
