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

// Package media assembles the final deliverables with ffmpeg. This file
// wraps the external binaries behind three sequential operations:
//
//  1. CombineAudio - concatenate the narration clips into one normalized
//     track (concat demuxer plus a re-encode, because the clips may not
//     share identical codec parameters).
//  2. ProbeDuration - read the combined track's container duration with
//     ffprobe. This number is the single source of truth for the video's
//     length; nothing downstream measures time any other way.
//  3. RenderSlideshow - encode the still images into a video timed
//     against the combined track.
//
// ffmpeg reports its diagnostics on stderr, so every failed invocation is
// wrapped in a *MediaPipelineError carrying the captured stderr text.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/cloud"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

// File names for the combined deliverables inside the project directory.
const (
	CombinedAudioFileName = "combined_audio.mp3"
	FinalVideoFileName    = "final_video.mp4"

	audioListFileName = "audio_concat.txt"
	videoListFileName = "slideshow_concat.txt"
)

// MediaPipelineError reports a failed ffmpeg/ffprobe invocation with the
// tool's stderr output attached, since that is where the actionable
// diagnostic always lives.
type MediaPipelineError struct {
	Operation string
	Stderr    string
	Err       error
}

func (e *MediaPipelineError) Error() string {
	return fmt.Sprintf("%s failed: %v: %s", e.Operation, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *MediaPipelineError) Unwrap() error { return e.Err }

// FFmpeg drives the external media toolchain. It implements the
// orchestrator's Assembler collaborator.
type FFmpeg struct {
	commandPath  string // path to the ffmpeg executable
	probePath    string // path to the ffprobe executable
	frameRate    int
	audioBitrate string
	sampleRate   int
}

// NewFFmpeg constructs the assembler from the media toolchain config.
// Unset paths fall back to resolution via $PATH.
func NewFFmpeg(cfg cloud.MediaTools) *FFmpeg {
	f := &FFmpeg{
		commandPath:  cfg.FFmpegPath,
		probePath:    cfg.FFprobePath,
		frameRate:    cfg.FrameRate,
		audioBitrate: cfg.AudioBitrate,
		sampleRate:   cfg.SampleRate,
	}
	if f.commandPath == "" {
		f.commandPath = "ffmpeg"
	}
	if f.probePath == "" {
		f.probePath = "ffprobe"
	}
	if f.frameRate == 0 {
		f.frameRate = 30
	}
	if f.audioBitrate == "" {
		f.audioBitrate = "128k"
	}
	if f.sampleRate == 0 {
		f.sampleRate = 44100
	}
	return f
}

// run executes one toolchain invocation and converts a non-zero exit into
// a *MediaPipelineError with the captured stderr.
func (f *FFmpeg) run(ctx context.Context, operation string, commandPath string, args ...string) error {
	cmd := exec.CommandContext(ctx, commandPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &MediaPipelineError{Operation: operation, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// CombineAudio concatenates the narration clips, in order, into one
// normalized track in the project directory.
//
// Every input is checked for existence up front: the concat demuxer's
// own missing-file diagnostics arrive after it has already consumed part
// of the list, and the resulting errors point at the wrong entry.
//
// Inputs:
//   - ctx: The context bounding the subprocess.
//   - run: The run workspace.
//   - clips: The narration artifacts in scene order.
//
// Outputs:
//   - *model.Artifact: The combined track.
//   - error: A missing input, or a *MediaPipelineError from the encode.
func (f *FFmpeg) CombineAudio(ctx context.Context, run *model.RunContext, clips []*model.Artifact) (*model.Artifact, error) {
	paths := make([]string, 0, len(clips))
	for i, clip := range clips {
		if _, err := os.Stat(clip.ContentPath); err != nil {
			return nil, fmt.Errorf("audio clip %d missing at %s: %w", i, clip.ContentPath, err)
		}
		paths = append(paths, clip.ContentPath)
	}

	listPath := filepath.Join(run.ProjectDir, audioListFileName)
	if err := os.WriteFile(listPath, []byte(BuildConcatList(paths)), 0644); err != nil {
		return nil, fmt.Errorf("writing audio concat list: %w", err)
	}

	outputPath := filepath.Join(run.ProjectDir, CombinedAudioFileName)
	err := f.run(ctx, "audio concat", f.commandPath,
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "libmp3lame",
		"-b:a", f.audioBitrate,
		"-ar", strconv.Itoa(f.sampleRate),
		outputPath,
	)
	if err != nil {
		return nil, err
	}

	return &model.Artifact{
		ContentPath: outputPath,
		PublicPath:  run.PublicPath("", CombinedAudioFileName),
	}, nil
}

// ProbeDuration reads the container duration of a media file in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.probePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, &MediaPipelineError{Operation: "duration probe", Stderr: stderr.String(), Err: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing probed duration %q: %w", strings.TrimSpace(stdout.String()), err)
	}
	return duration, nil
}

// RenderSlideshow encodes the scene images into the final video, timed so
// the images evenly cover the combined narration track.
//
// The filter chain forces even dimensions (libx264 rejects odd sizes with
// yuv420p) and a fixed frame rate; "-shortest" hands control of the
// output length to the audio stream, which is the probed source of truth.
//
// Inputs:
//   - ctx: The context bounding the subprocess.
//   - run: The run workspace; the video lands in its video directory.
//   - images: The scene images in script order.
//   - combinedAudioPath: The combined narration track.
//   - totalDuration: The probed duration of that track in seconds.
//
// Outputs:
//   - *model.Artifact: The final video.
//   - error: A *MediaPipelineError, or a failed output verification.
func (f *FFmpeg) RenderSlideshow(ctx context.Context, run *model.RunContext, images []*model.Artifact, combinedAudioPath string, totalDuration float64) (*model.Artifact, error) {
	paths := make([]string, 0, len(images))
	for i, img := range images {
		if _, err := os.Stat(img.ContentPath); err != nil {
			return nil, fmt.Errorf("scene image %d missing at %s: %w", i, img.ContentPath, err)
		}
		paths = append(paths, img.ContentPath)
	}

	perImage := PerImageDuration(totalDuration, len(images))
	listPath := filepath.Join(run.ProjectDir, videoListFileName)
	if err := os.WriteFile(listPath, []byte(BuildSlideshowList(paths, perImage)), 0644); err != nil {
		return nil, fmt.Errorf("writing slideshow concat list: %w", err)
	}

	outputPath := filepath.Join(run.VideoDir, FinalVideoFileName)
	err := f.run(ctx, "slideshow render", f.commandPath,
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", combinedAudioPath,
		"-vf", fmt.Sprintf("scale=trunc(iw/2)*2:trunc(ih/2)*2,fps=%d,format=yuv420p", f.frameRate),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", f.audioBitrate,
		"-shortest",
		outputPath,
	)
	if err != nil {
		return nil, err
	}

	// ffmpeg can exit zero after writing an empty container when the input
	// list is degenerate; verify there is an actual deliverable.
	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("rendered video missing at %s: %w", outputPath, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("rendered video at %s is empty", outputPath)
	}

	return &model.Artifact{
		ContentPath: outputPath,
		PublicPath:  run.PublicPath("video", FinalVideoFileName),
	}, nil
}
