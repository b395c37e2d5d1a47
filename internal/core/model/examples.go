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

// Package model defines the core data structures for the slideshow
// generation pipeline. This file provides example data used for few-shot
// prompting: the script model follows format examples far more reliably
// than prose instructions alone.
package model

// GetExampleScript returns a short script fragment in the exact grammar
// the parser consumes. It is embedded into the generation prompt as the
// format example.
func GetExampleScript() string {
	return `[A sunlit forest canopy seen from below, light filtering through green leaves]
Narrator: "Plants capture sunlight with their leaves, turning light into the energy that powers almost all life on Earth."

[A close-up of a leaf surface showing tiny pores opening]
Narrator: "Through microscopic pores, leaves breathe in carbon dioxide and release the oxygen we depend on."`
}
