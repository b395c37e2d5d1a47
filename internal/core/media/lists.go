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
// holds the pure list-building helpers: the concat demuxer consumes a
// small text format ("file" and "duration" directives), and getting its
// quirks right is plain string work that deserves direct unit tests
// without a subprocess in the loop.
package media

import (
	"fmt"
	"strings"
)

// PerImageDuration splits the total audio duration evenly across the
// scene count. The split is exact by construction: the renderer shows
// every image for totalDuration/count seconds and the sum reproduces the
// probed total.
func PerImageDuration(totalDuration float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return totalDuration / float64(count)
}

// escapeConcatPath quotes a path for a concat demuxer list entry. Single
// quotes inside the path are the only character needing escaping inside a
// quoted entry.
func escapeConcatPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}

// BuildConcatList renders the concat demuxer list for joining audio clips
// back to back: one "file" directive per clip, in order.
func BuildConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(p))
	}
	return b.String()
}

// BuildSlideshowList renders the concat demuxer list for the slideshow:
// each image appears as a "file" directive followed by a "duration"
// directive. The final image is listed once more without a duration - the
// demuxer ignores the duration of the last entry, and repeating the file
// is the documented way to make it hold until the stream ends.
func BuildSlideshowList(paths []string, perImageDuration float64) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(p))
		fmt.Fprintf(&b, "duration %f\n", perImageDuration)
	}
	if len(paths) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(paths[len(paths)-1]))
	}
	return b.String()
}
