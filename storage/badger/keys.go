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


package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/storage"
)

const (
	tipRecordPrefix   = "tiprec:"
	tipIDPrefix       = "tipid:"
	tipGenerationKey  = "tipgen"
	generationKeySize = 8
)

// generationPrefix is the prefix of every key of one catalogue generation.
// Format: prefix + 8-byte generation
func generationPrefix(prefix string, gen uint64) []byte {
	buf := make([]byte, len(prefix)+generationKeySize)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	return buf
}

// makeTipRecordKey generates the key of the tip stored at a corpus position.
// Format: prefix + 8-byte generation + 8-byte position
func makeTipRecordKey(gen uint64, position int) []byte {
	buf := make([]byte, len(tipRecordPrefix)+generationKeySize+8)
	offset := copy(buf, generationPrefix(tipRecordPrefix, gen))
	// Write in BigEndian order so lexicographic sort follows corpus order
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// makeTipIDKey generates the key of the id -> record key lookup.
// Format: prefix + 8-byte generation + 8-byte id
func makeTipIDKey(gen uint64, id core.ID) []byte {
	buf := make([]byte, len(tipIDPrefix)+generationKeySize+8)
	offset := copy(buf, generationPrefix(tipIDPrefix, gen))
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// positionFromRecordKey reads the position back out of a record key.
func positionFromRecordKey(key []byte) (int, error) {
	if len(key) != len(tipRecordPrefix)+generationKeySize+8 {
		return 0, fmt.Errorf("%w: record key of %d bytes", storage.ErrTruncatedData, len(key))
	}
	return int(binary.BigEndian.Uint64(key[len(tipRecordPrefix)+generationKeySize:])), nil
}

// generationFromKey reads the generation out of a record or id key.
func generationFromKey(prefix string, key []byte) (uint64, error) {
	if len(key) < len(prefix)+generationKeySize {
		return 0, fmt.Errorf("%w: key of %d bytes", storage.ErrTruncatedData, len(key))
	}
	return binary.BigEndian.Uint64(key[len(prefix):]), nil
}

func encodeGeneration(gen uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, gen)
}

func decodeGeneration(val []byte) (uint64, error) {
	if len(val) != generationKeySize {
		return 0, fmt.Errorf("%w: generation of %d bytes", storage.ErrTruncatedData, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}
