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


package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTip indicates a TipRecord failed validation.
	ErrInvalidTip = errors.New("invalid tip")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("tip text cannot be empty")

	// ErrInvalidID indicates an ID that is zero or otherwise unusable.
	ErrInvalidID = errors.New("tip id must be a positive integer")

	// ErrDuplicateID indicates two tips in the same corpus share an ID.
	ErrDuplicateID = errors.New("duplicate tip id")

	// ErrEmptyQuery indicates a search query that is blank after trimming.
	ErrEmptyQuery = errors.New("empty query")
)

// DuplicateIDError reports an ID collision during a corpus load.
// It matches ErrDuplicateID with errors.Is.
type DuplicateIDError struct {
	Id       ID
	Position int  // 1-based position of the offending record in the input
	Explicit bool // Whether the colliding ID came from the record itself
}

func (e *DuplicateIDError) Error() string {
	origin := "assigned"
	if e.Explicit {
		origin = "explicit"
	}
	return fmt.Sprintf("%s: %s id %d at position %d", ErrDuplicateID, origin, e.Id, e.Position)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}
