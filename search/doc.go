// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides keyword search over an in-memory tip corpus.
//
// The Engine type indexes every tip by its text words, category and tags,
// and retrieves candidates for a query in up to three phases:
//   - Exact lookups of the query words in the index
//   - Substring expansion against index terms when few candidates are found
//   - A raw scan for the whole query when nothing else matched
//
// Candidates are scored with a fixed additive model (see Weights) and
// returned best first, ties in corpus order. The engine also filters by
// category, finds related tips and suggests index terms.
package search
