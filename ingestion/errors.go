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


package ingestion

import "errors"

var (
	// ErrMissingText is returned for a raw tip with no usable text, content or advice.
	ErrMissingText = errors.New("tip has no text")

	// ErrInvalidDocument is returned when a document is neither a list of tips
	// nor an object holding a "tips" list.
	ErrInvalidDocument = errors.New("invalid tip document")

	// ErrUnsupportedFormat is returned for a document format that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrSourceRequired is returned when a nil source is given.
	ErrSourceRequired = errors.New("source required")
)
