package core

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"slices"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of a corpus.
// Fields are hashed in the form used for matching (lower-cased category and
// tags) plus the display text, so two corpora that behave identically under
// search produce the same fingerprint. Tag order does not affect the digest
// as long as the tag set is the same; record order does.
func Fingerprint(tips []TipRecord) string {
	h, _ := blake2b.New(32, nil)
	var buf [8]byte
	for _, tip := range tips {
		binary.LittleEndian.PutUint64(buf[:], uint64(tip.Id))
		h.Write(buf[:])
		writeField(h, tip.Text)
		writeField(h, strings.ToLower(tip.Category))
		for _, tag := range sortedLower(tip.Tags) {
			writeField(h, tag)
		}
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so adjacent fields can't alias.
func writeField(w io.Writer, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	w.Write(buf[:])
	w.Write([]byte(s))
}

func sortedLower(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}
	slices.Sort(out)
	return out
}
