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

// Package pipeline orchestrates the topic-to-video run. The Orchestrator
// owns the state machine: it validates the request, consults the manifest
// cache, prepares the run workspace, and walks the stages in strict
// order - script generation, parsing, asset fan-out, audio combination,
// duration probing, slideshow rendering and captioning - labelling any
// failure with the stage it happened in.
//
// Collaborators are injected behind small interfaces so the whole run can
// be exercised in tests with fake capabilities and no provider traffic.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

// ScriptFileName is where the raw generated script is persisted inside
// the project directory.
const ScriptFileName = "script.txt"

// maxTopicLength bounds the topic so it stays usable as a prompt and as
// the basis for directory names.
const maxTopicLength = 200

// ScriptGenerator produces the raw script text for a topic.
type ScriptGenerator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// ScriptParser extracts scene/narration pairs from raw script text.
type ScriptParser func(raw string) ([]model.Scene, []model.Narration, error)

// AssetGenerator runs the image and audio fan-out for a run.
type AssetGenerator interface {
	GenerateAll(ctx context.Context, run *model.RunContext, scenes []model.Scene, narrations []model.Narration) ([]*model.Artifact, []*model.Artifact, error)
}

// CaptionGenerator produces the caption track for the combined narration.
type CaptionGenerator interface {
	Generate(ctx context.Context, run *model.RunContext, combinedAudioPath string) (string, []*model.Word, error)
}

// Assembler drives the media toolchain for the three sequential assembly
// stages.
type Assembler interface {
	CombineAudio(ctx context.Context, run *model.RunContext, clips []*model.Artifact) (*model.Artifact, error)
	ProbeDuration(ctx context.Context, mediaPath string) (float64, error)
	RenderSlideshow(ctx context.Context, run *model.RunContext, images []*model.Artifact, combinedAudioPath string, totalDuration float64) (*model.Artifact, error)
}

// Uploader copies a finished artifact to object storage and returns its
// public URL. Optional; a nil Uploader leaves artifacts local.
type Uploader interface {
	Upload(ctx context.Context, contentPath string, objectKey string) (string, error)
}

// Orchestrator executes runs. Construct with NewOrchestrator; the zero
// value is not usable.
type Orchestrator struct {
	script    ScriptGenerator
	parse     ScriptParser
	assets    AssetGenerator
	captions  CaptionGenerator
	assembler Assembler
	uploader  Uploader
	cache     *RunCache

	outputDir  string
	publicBase string

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	successCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	cacheHitCounter metric.Int64Counter
}

// NewOrchestrator wires the orchestrator. captions and uploader may be
// nil, disabling those stages; everything else is required.
func NewOrchestrator(
	script ScriptGenerator,
	parse ScriptParser,
	assets AssetGenerator,
	captions CaptionGenerator,
	assembler Assembler,
	uploader Uploader,
	cache *RunCache,
	outputDir string,
	publicBase string,
	logger *slog.Logger) *Orchestrator {
	meter := otel.Meter("github.com/jaycherian/gcp-go-slideshow-maker")
	successCounter, _ := meter.Int64Counter("pipeline.run.counter.success")
	errorCounter, _ := meter.Int64Counter("pipeline.run.counter.error")
	cacheHitCounter, _ := meter.Int64Counter("pipeline.run.counter.cache_hit")
	return &Orchestrator{
		script:          script,
		parse:           parse,
		assets:          assets,
		captions:        captions,
		assembler:       assembler,
		uploader:        uploader,
		cache:           cache,
		outputDir:       outputDir,
		publicBase:      publicBase,
		logger:          logger,
		tracer:          otel.Tracer("pipeline"),
		now:             time.Now,
		successCounter:  successCounter,
		errorCounter:    errorCounter,
		cacheHitCounter: cacheHitCounter,
	}
}

// Run executes one topic-to-video run end to end.
//
// Inputs:
//   - ctx: The context for the whole run. Cancellation aborts whatever
//     stage is in flight; partial artifacts stay on disk.
//   - topic: The raw user topic.
//
// Outputs:
//   - *model.Manifest: The finished manifest, possibly served from cache.
//   - error: *ValidationError for a rejected request, otherwise a
//     *PipelineError labelled with the failing stage.
func (o *Orchestrator) Run(ctx context.Context, topic string) (*model.Manifest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &ValidationError{Field: "topic", Message: "must not be empty"}
	}
	if len(topic) > maxTopicLength {
		return nil, &ValidationError{Field: "topic", Message: fmt.Sprintf("must not exceed %d characters", maxTopicLength)}
	}

	if cached := o.cache.Get(topic); cached != nil {
		o.cacheHitCounter.Add(ctx, 1)
		o.logger.InfoContext(ctx, "serving cached manifest", "topic", topic, "run_id", cached.RunID)
		return cached, nil
	}

	runID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.topic", topic),
	))
	defer span.End()

	run := model.NewRunContext(runID, topic, o.outputDir, o.publicBase, o.now())
	manifest, err := o.execute(ctx, run)
	if err != nil {
		o.errorCounter.Add(ctx, 1)
		span.RecordError(err)
		o.logger.ErrorContext(ctx, "run failed", "run_id", runID, "topic", topic, "error", err)
		return nil, err
	}

	o.successCounter.Add(ctx, 1)
	o.cache.Put(topic, manifest)
	o.logger.InfoContext(ctx, "run complete",
		"run_id", runID,
		"topic", topic,
		"scenes", len(manifest.Scenes),
		"duration_seconds", manifest.TotalDuration)
	return manifest, nil
}

// execute walks the stage machine for a prepared run context. Every
// return path before manifest assembly goes through stageErr so the
// failure carries its stage label.
func (o *Orchestrator) execute(ctx context.Context, run *model.RunContext) (*model.Manifest, error) {
	stage := model.StageCreated

	for _, dir := range []string{run.ImagesDir, run.AudioDir, run.VideoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, stageErr(stage, fmt.Errorf("creating run workspace: %w", err))
		}
	}

	o.logger.InfoContext(ctx, "generating script", "run_id", run.RunID, "topic", run.Topic)
	raw, err := o.script.Generate(ctx, run.Topic)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageScriptGenerated
	if err := os.WriteFile(filepath.Join(run.ProjectDir, ScriptFileName), []byte(raw), 0644); err != nil {
		return nil, stageErr(stage, fmt.Errorf("persisting script: %w", err))
	}

	scenes, narrations, err := o.parse(raw)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageParsed
	o.logger.InfoContext(ctx, "script parsed", "run_id", run.RunID, "scenes", len(scenes))

	stage = model.StageAssetsGenerating
	images, clips, err := o.assets.GenerateAll(ctx, run, scenes, narrations)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageAssetsComplete

	combined, err := o.assembler.CombineAudio(ctx, run, clips)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageAudioCombined

	totalDuration, err := o.assembler.ProbeDuration(ctx, combined.ContentPath)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageDurationKnown
	perScene := totalDuration / float64(len(scenes))

	stage = model.StageVideoRendering
	video, err := o.assembler.RenderSlideshow(ctx, run, images, combined.ContentPath, totalDuration)
	if err != nil {
		return nil, stageErr(stage, err)
	}
	stage = model.StageVideoComplete

	manifest := &model.Manifest{
		RunID:            run.RunID,
		Topic:            run.Topic,
		Slug:             run.Slug,
		Timestamp:        run.Timestamp,
		ProjectPath:      run.ProjectDir,
		Script:           raw,
		CombinedAudio:    combined,
		Video:            video,
		TotalDuration:    totalDuration,
		DurationPerScene: perScene,
	}
	for i := range scenes {
		scene := scenes[i]
		scene.Image = images[i]
		manifest.Scenes = append(manifest.Scenes, &scene)

		narration := narrations[i]
		narration.Audio = clips[i]
		narration.Start = float64(i) * perScene
		narration.Duration = perScene
		manifest.Narrations = append(manifest.Narrations, &narration)
	}

	// Captions are additive: a transcription failure downgrades the result
	// instead of discarding a finished video.
	if o.captions != nil {
		stage = model.StageCaptionsGenerating
		text, words, err := o.captions.Generate(ctx, run, combined.ContentPath)
		if err != nil {
			o.logger.WarnContext(ctx, "caption generation failed, shipping without captions",
				"run_id", run.RunID, "error", err)
		} else {
			manifest.CaptionText = text
			manifest.Captions = words
			stage = model.StageCaptionsComplete
		}
	}

	if o.uploader != nil {
		objectKey := fmt.Sprintf("%s_%s/video/%s", run.Slug, run.Timestamp, filepath.Base(video.ContentPath))
		url, err := o.uploader.Upload(ctx, video.ContentPath, objectKey)
		if err != nil {
			return nil, stageErr(stage, err)
		}
		manifest.Video.PublicPath = url
	}

	return manifest, nil
}

func stageErr(stage model.Stage, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}
