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

// Package media_test contains the test suite for the media package. The
// assembly operations themselves need a real ffmpeg binary, so this file
// covers the pure pieces: the duration split and the concat demuxer list
// construction both stages feed into the subprocess.
package media_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/media"
)

// TestPerImageDurationSplitIsExact verifies the timing invariant: the
// per-image duration times the scene count reproduces the probed total
// exactly.
func TestPerImageDurationSplitIsExact(t *testing.T) {
	per := media.PerImageDuration(40.0, 4)
	assert.Equal(t, 10.0, per)
	assert.Equal(t, 40.0, per*4)

	per = media.PerImageDuration(37.5, 3)
	assert.Equal(t, 12.5, per)
	assert.Equal(t, 37.5, per*3)
}

// TestPerImageDurationDegenerateCount verifies a non-positive scene count
// yields zero rather than a division panic or Inf.
func TestPerImageDurationDegenerateCount(t *testing.T) {
	assert.Equal(t, 0.0, media.PerImageDuration(40.0, 0))
	assert.Equal(t, 0.0, media.PerImageDuration(40.0, -1))
}

// TestBuildConcatList verifies one file directive per clip, in input
// order.
func TestBuildConcatList(t *testing.T) {
	list := media.BuildConcatList([]string{
		"/runs/audio/narration_one.mp3",
		"/runs/audio/narration_two.mp3",
	})

	lines := strings.Split(strings.TrimSpace(list), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "file '/runs/audio/narration_one.mp3'", lines[0])
	assert.Equal(t, "file '/runs/audio/narration_two.mp3'", lines[1])
}

// TestBuildConcatListEscapesQuotes verifies a single quote inside a path
// survives the demuxer's quoting rules.
func TestBuildConcatListEscapesQuotes(t *testing.T) {
	list := media.BuildConcatList([]string{"/runs/audio/it's_alive.mp3"})
	assert.Equal(t, `file '/runs/audio/it'\''s_alive.mp3'`+"\n", list)
}

// TestBuildSlideshowList verifies the slideshow list shape the concat
// demuxer requires: a file plus duration directive per image, and the
// final image repeated once more without a duration so it holds until
// the stream ends.
func TestBuildSlideshowList(t *testing.T) {
	paths := []string{
		"/runs/images/scene_a.png",
		"/runs/images/scene_b.png",
		"/runs/images/scene_c.png",
	}
	list := media.BuildSlideshowList(paths, 2.5)

	lines := strings.Split(strings.TrimSpace(list), "\n")
	// 3 file/duration pairs plus the repeated final entry.
	assert.Len(t, lines, 7)
	assert.Equal(t, "file '/runs/images/scene_a.png'", lines[0])
	assert.Equal(t, fmt.Sprintf("duration %f", 2.5), lines[1])
	assert.Equal(t, "file '/runs/images/scene_c.png'", lines[6])
}

// TestBuildSlideshowListEmpty verifies no trailing repeat is emitted for
// an empty input.
func TestBuildSlideshowListEmpty(t *testing.T) {
	assert.Equal(t, "", media.BuildSlideshowList(nil, 5.0))
}
