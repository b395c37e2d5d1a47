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

package assets

import "fmt"

// AssetGenerationError reports the final failure of one asset after its
// retry budget is spent. A single AssetGenerationError fails the whole
// run: a slideshow with a missing image or narration clip is not a
// degraded result, it is a wrong one.
type AssetGenerationError struct {
	Kind  string // "image" or "audio"
	Index int    // 0-based scene/narration index
	Err   error
}

func (e *AssetGenerationError) Error() string {
	return fmt.Sprintf("%s generation failed for scene %d: %v", e.Kind, e.Index, e.Err)
}

func (e *AssetGenerationError) Unwrap() error { return e.Err }
