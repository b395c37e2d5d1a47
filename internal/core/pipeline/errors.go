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

package pipeline

import (
	"fmt"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/model"
)

// ValidationError reports a request rejected before any generation work
// started. The HTTP layer maps it to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PipelineError labels a failure with the stage the run was in when it
// happened. The underlying error keeps its type for errors.As inspection;
// the stage label is what operators search logs by.
type PipelineError struct {
	Stage model.Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
