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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the generation providers (Vertex AI text model, OpenAI-compatible
// image/speech/transcription endpoints), rate limits, the media toolchain
// and artifact storage.
//
// Structs:
//   - VertexAiLLMModel: Configuration for the Vertex AI script model.
//   - OpenAIProvider: Endpoint and model names for the OpenAI-compatible provider.
//   - RateLimits: Token-bucket refill rates, global and per capability.
//   - MediaTools: ffmpeg/ffprobe locations and encoding parameters.
//   - Storage: Local output tree and optional GCS upload bucket.
//   - Cache: Bounds for the topic response cache.
//   - PromptTemplates: Text templates for prompts sent to the script model.
//   - Config: The top-level struct aggregating all of the above.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the content safety thresholds for the
// script model. Script generation targets family-friendly educational
// content, so the blocking thresholds are deliberately conservative.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockLowAndAbove,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
	},
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM) used for script generation.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type for the LLM.
}

// OpenAIProvider holds the connection settings for the OpenAI-compatible
// provider that serves image generation, speech synthesis and
// transcription. BaseURL may point at any compatible endpoint; the API
// key is read from the environment variable named by APIKeyEnv so secrets
// stay out of the config files.
type OpenAIProvider struct {
	BaseURL         string `toml:"base_url"`         // Optional override for the API endpoint.
	APIKeyEnv       string `toml:"api_key_env"`      // Environment variable holding the API key.
	ImageModel      string `toml:"image_model"`      // Model name for image generation (e.g. "dall-e-3").
	ImageSize       string `toml:"image_size"`       // Output resolution (e.g. "1024x1024").
	SpeechModel     string `toml:"speech_model"`     // Model name for speech synthesis (e.g. "tts-1").
	SpeechVoice     string `toml:"speech_voice"`     // Voice preset for synthesis (e.g. "alloy").
	TranscribeModel string `toml:"transcribe_model"` // Model name for transcription (e.g. "whisper-1").
}

// RateLimits configures the token bucket refill rates, expressed in
// requests per second. These mirror the external providers' quotas, not
// anything per-run.
type RateLimits struct {
	GlobalPerSecond        int `toml:"global_per_second"`
	ScriptPerSecond        int `toml:"script_per_second"`
	ImagePerSecond         int `toml:"image_per_second"`
	SpeechPerSecond        int `toml:"speech_per_second"`
	TranscriptionPerSecond int `toml:"transcription_per_second"`
}

// MediaTools configures the external media-encoding engine and the fixed
// encoding parameters for the output video.
type MediaTools struct {
	FFmpegPath   string `toml:"ffmpeg_path"`   // Path to the ffmpeg executable.
	FFprobePath  string `toml:"ffprobe_path"`  // Path to the ffprobe executable.
	FrameRate    int    `toml:"frame_rate"`    // Output video frame rate.
	AudioBitrate string `toml:"audio_bitrate"` // Normalized audio bitrate (e.g. "128k").
	SampleRate   int    `toml:"sample_rate"`   // Normalized audio sample rate in Hz.
}

// Storage configures where generated artifacts live. OutputDir is the
// root of the local generated tree; PublicBasePath is the URL prefix
// under which that tree is served. UploadBucket, when set, enables
// uploading the finished video to GCS.
type Storage struct {
	OutputDir      string `toml:"output_dir"`
	PublicBasePath string `toml:"public_base_path"`
	UploadBucket   string `toml:"upload_bucket"`
}

// Cache bounds the topic response cache.
type Cache struct {
	MaxEntries int `toml:"max_entries"`
	TTLSeconds int `toml:"ttl_seconds"`
}

// PromptTemplates holds the text templates for prompts sent to the script
// model.
type PromptTemplates struct {
	ScriptPrompt string `toml:"script"` // The template for generating the multi-scene script.
}

// Pipeline holds tunables for the orchestration itself.
type Pipeline struct {
	SceneCount        int `toml:"scene_count"`         // Number of scenes requested from the script model.
	ImageChunkSize    int `toml:"image_chunk_size"`    // Batch size for image fan-out.
	ChunkPauseMillis  int `toml:"chunk_pause_millis"`  // Pause between image batches.
	CallTimeoutMillis int `toml:"call_timeout_millis"` // Per-attempt timeout for outbound generation calls.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
	} `toml:"application"`
	Storage         Storage                     `toml:"storage"`
	OpenAI          OpenAIProvider              `toml:"openai"`
	RateLimits      RateLimits                  `toml:"rate_limits"`
	MediaTools      MediaTools                  `toml:"media_tools"`
	Cache           Cache                       `toml:"cache"`
	Pipeline        Pipeline                    `toml:"pipeline"`
	PromptTemplates PromptTemplates             `toml:"prompt_templates"`
	AgentModels     map[string]VertexAiLLMModel `toml:"agent_models"` // Vertex AI script models keyed by a logical name (e.g. "script-writer").
}

// NewConfig is a constructor function that creates a new, initialized
// Config instance. The map fields must be initialized before the TOML
// loader populates them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]VertexAiLLMModel),
	}
}
