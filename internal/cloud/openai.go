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

// Package cloud provides components for interacting with external
// generation providers. This file wraps the OpenAI-compatible provider
// that serves the three non-text capabilities of the pipeline:
//
//   - Image generation: one call per scene description, returning raw
//     image bytes (the request asks for base64 payloads so the provider's
//     temporary URLs never enter the pipeline).
//   - Speech synthesis: one call per narration, returning the audio as a
//     byte stream that the caller must buffer fully before writing.
//   - Transcription: one call for the combined narration track, with
//     word-level timestamps.
//
// HTTP 429 responses are converted to *RateLimitError so the retry
// classifier can treat provider throttling distinctly from other failures.
package cloud

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// TranscribedWord is one word of a transcription with offsets in seconds
// against the submitted audio.
type TranscribedWord struct {
	Text  string
	Start float64
	End   float64
}

// Transcription is the result of a transcription call: the full transcript
// plus word-level timing.
type Transcription struct {
	Text  string
	Words []TranscribedWord
}

// OpenAIModels binds a configured go-openai client to the model names used
// for each capability. It implements the assets package's ImageSynthesizer
// and SpeechSynthesizer capabilities and the captions package's
// Transcriber capability.
type OpenAIModels struct {
	Client   *openai.Client
	Provider OpenAIProvider
}

// NewOpenAIModels constructs the provider wrapper. The API key is read
// from the environment variable named in the provider config; BaseURL,
// when set, redirects the client at a compatible self-hosted endpoint.
func NewOpenAIModels(provider OpenAIProvider) *OpenAIModels {
	cfg := openai.DefaultConfig(os.Getenv(provider.APIKeyEnv))
	if provider.BaseURL != "" {
		cfg.BaseURL = provider.BaseURL
	}
	return &OpenAIModels{
		Client:   openai.NewClientWithConfig(cfg),
		Provider: provider,
	}
}

// SynthesizeImage generates one image for the given prompt and returns the
// raw bytes. An empty payload is an error, never an empty artifact.
func (m *OpenAIModels) SynthesizeImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := m.Client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          m.Provider.ImageModel,
		N:              1,
		Size:           m.Provider.ImageSize,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classifyProviderError("image generation", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("no image data in response")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return raw, nil
}

// SynthesizeSpeech synthesizes the narration text and returns the audio as
// a byte stream. The caller owns the stream and must close it; the stream
// must be consumed completely before the clip is written to disk so a
// broken connection never leaves a partial file behind.
func (m *OpenAIModels) SynthesizeSpeech(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := m.Client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(m.Provider.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(m.Provider.SpeechVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, classifyProviderError("speech synthesis", err)
	}
	return resp, nil
}

// Transcribe submits the audio file at audioPath for transcription with
// word-level timestamp granularity and returns the transcript plus word
// timings. Word timings may be empty; the caption generator decides
// whether that is fatal.
func (m *OpenAIModels) Transcribe(ctx context.Context, audioPath string) (*Transcription, error) {
	resp, err := m.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    m.Provider.TranscribeModel,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, classifyProviderError("transcription", err)
	}

	out := &Transcription{Text: resp.Text, Words: make([]TranscribedWord, 0, len(resp.Words))}
	for _, w := range resp.Words {
		out.Words = append(out.Words, TranscribedWord{Text: w.Word, Start: w.Start, End: w.End})
	}
	return out, nil
}
