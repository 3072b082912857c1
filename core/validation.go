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
	"fmt"
	"strings"
)

// ValidateTip validates a TipRecord according to domain rules.
//
// Validation rules:
//   - Id must be non-zero
//   - Text must not be blank
//
// Category, tags and the provenance fields are not validated.
func ValidateTip(tip *TipRecord) error {
	if tip == nil {
		return fmt.Errorf("%w: tip is nil", ErrInvalidTip)
	}

	if tip.Id == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTip, ErrInvalidID)
	}

	if strings.TrimSpace(tip.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTip, ErrEmptyText)
	}

	return nil
}

// ValidateCorpus validates every tip and checks that IDs are unique.
// The first failure is returned; a collision is reported as *DuplicateIDError.
func ValidateCorpus(tips []TipRecord) error {
	seen := make(map[ID]struct{}, len(tips))
	for i := range tips {
		if err := ValidateTip(&tips[i]); err != nil {
			return fmt.Errorf("tip %d: %w", i+1, err)
		}
		if _, dup := seen[tips[i].Id]; dup {
			return &DuplicateIDError{Id: tips[i].Id, Position: i + 1, Explicit: true}
		}
		seen[tips[i].Id] = struct{}{}
	}
	return nil
}
