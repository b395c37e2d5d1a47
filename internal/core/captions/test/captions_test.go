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

// Package captions_test contains the test suite for the captions
// package, run against a fake transcription capability.
package captions_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/captions"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
)

type fakeTranscriber struct {
	result *cloud.Transcription
	err    error
	calls  int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*cloud.Transcription, error) {
	f.calls++
	return f.result, f.err
}

func newCaptionRun(t *testing.T) *model.RunContext {
	t.Helper()
	run := model.NewRunContext("run-1", "Tides", t.TempDir(), "/generated", time.Now())
	assert.NoError(t, os.MkdirAll(run.ProjectDir, 0755))
	return run
}

// TestGenerateReturnsWordsAndPersists verifies the word timings come back
// in order and land in transcription.json inside the project directory.
func TestGenerateReturnsWordsAndPersists(t *testing.T) {
	transcriber := &fakeTranscriber{result: &cloud.Transcription{
		Text: "the tides rise",
		Words: []cloud.TranscribedWord{
			{Text: "the", Start: 0.0, End: 0.2},
			{Text: "tides", Start: 0.2, End: 0.6},
			{Text: "rise", Start: 0.6, End: 1.0},
		},
	}}
	generator := captions.NewGenerator(transcriber, ratelimit.New(1000), cloud.IsTransient)
	run := newCaptionRun(t)

	text, words, err := generator.Generate(context.Background(), run, "/audio/combined_audio.mp3")
	assert.NoError(t, err)
	assert.Equal(t, "the tides rise", text)
	assert.Len(t, words, 3)
	assert.Equal(t, "tides", words[1].Text)
	assert.Equal(t, 0.2, words[1].Start)

	raw, err := os.ReadFile(filepath.Join(run.ProjectDir, captions.TranscriptionFileName))
	assert.NoError(t, err)

	var persisted struct {
		Text  string        `json:"text"`
		Words []*model.Word `json:"words"`
	}
	assert.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "the tides rise", persisted.Text)
	assert.Len(t, persisted.Words, 3)
}

// TestGenerateNoWordDataIsAnError verifies a transcript without word
// timing cannot produce captions.
func TestGenerateNoWordDataIsAnError(t *testing.T) {
	transcriber := &fakeTranscriber{result: &cloud.Transcription{Text: "silence", Words: nil}}
	generator := captions.NewGenerator(transcriber, ratelimit.New(1000), cloud.IsTransient)
	run := newCaptionRun(t)

	_, _, err := generator.Generate(context.Background(), run, "/audio/combined_audio.mp3")

	var noDataErr *captions.NoTranscriptionDataError
	assert.True(t, errors.As(err, &noDataErr))
	assert.NoFileExists(t, filepath.Join(run.ProjectDir, captions.TranscriptionFileName))
}

// TestGenerateNonRetryableFailurePropagates verifies provider failures
// the classifier rejects are returned after a single call.
func TestGenerateNonRetryableFailurePropagates(t *testing.T) {
	providerErr := errors.New("unsupported audio format")
	transcriber := &fakeTranscriber{err: providerErr}
	generator := captions.NewGenerator(transcriber, ratelimit.New(1000), cloud.IsTransient)
	run := newCaptionRun(t)

	_, _, err := generator.Generate(context.Background(), run, "/audio/combined_audio.mp3")
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, 1, transcriber.calls)
}
