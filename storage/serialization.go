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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/tipindex/core"
)

// TipRecordMUS encodes tip records in MUS format.
var TipRecordMUS = tipRecordMUS{}

type tipRecordMUS struct{}

// Marshal writes tip to bs, which must hold at least Size(tip) bytes.
func (tipRecordMUS) Marshal(tip core.TipRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(tip.Id), bs)
	n += ord.String.Marshal(tip.Text, bs[n:])
	n += ord.String.Marshal(tip.Category, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(tip.Tags)), bs[n:])
	for _, tag := range tip.Tags {
		n += ord.String.Marshal(tag, bs[n:])
	}
	n += ord.String.Marshal(tip.Severity, bs[n:])
	n += ord.String.Marshal(tip.Source, bs[n:])
	n += ord.String.Marshal(tip.Date, bs[n:])
	return n
}

// Unmarshal reads a tip from bs.
func (tipRecordMUS) Unmarshal(bs []byte) (tip core.TipRecord, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return tip, n, err
	}
	tip.Id = core.ID(id)

	var m int
	if tip.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return tip, n + m, err
	}
	n += m
	if tip.Category, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return tip, n + m, err
	}
	n += m

	count, m, err := varint.Uint64.Unmarshal(bs[n:])
	if err != nil {
		return tip, n + m, err
	}
	n += m
	// Every tag takes at least one byte.
	if count > uint64(len(bs)-n) {
		return tip, n, ErrTruncatedData
	}
	if count > 0 {
		tip.Tags = make([]string, count)
		for i := range tip.Tags {
			if tip.Tags[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return tip, n + m, err
			}
			n += m
		}
	}

	for _, field := range []*string{&tip.Severity, &tip.Source, &tip.Date} {
		if *field, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return tip, n + m, err
		}
		n += m
	}
	return tip, n, nil
}

// Size returns the encoded length of tip.
func (tipRecordMUS) Size(tip core.TipRecord) (size int) {
	size = varint.Uint64.Size(uint64(tip.Id))
	size += ord.String.Size(tip.Text)
	size += ord.String.Size(tip.Category)
	size += varint.Uint64.Size(uint64(len(tip.Tags)))
	for _, tag := range tip.Tags {
		size += ord.String.Size(tag)
	}
	size += ord.String.Size(tip.Severity)
	size += ord.String.Size(tip.Source)
	size += ord.String.Size(tip.Date)
	return size
}

// MarshalTip serializes a TipRecord to bytes.
func MarshalTip(tip *core.TipRecord) []byte {
	buf := make([]byte, TipRecordMUS.Size(*tip))
	TipRecordMUS.Marshal(*tip, buf)
	return buf
}

// UnmarshalTip deserializes a TipRecord from bytes.
func UnmarshalTip(data []byte) (*core.TipRecord, error) {
	tip, _, err := TipRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &tip, nil
}
