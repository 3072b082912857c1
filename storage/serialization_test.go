package storage

import (
	"testing"

	"github.com/poiesic/tipindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalTip(t *testing.T) {
	tests := []struct {
		name string
		tip  core.TipRecord
	}{
		{
			name: "minimal tip",
			tip:  core.TipRecord{Id: 1, Text: "Drink water", Category: "general"},
		},
		{
			name: "full tip",
			tip: core.TipRecord{
				Id:       300,
				Text:     "Drink ginger tea for indigestion",
				Category: "Stomach",
				Tags:     []string{"ginger", "Digestion", "ünïcode"},
				Severity: "mild",
				Source:   "Health Database",
				Date:     "2024-05-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalTip(&tt.tip)
			assert.Len(t, data, TipRecordMUS.Size(tt.tip))

			decoded, err := UnmarshalTip(data)
			require.NoError(t, err)
			assert.Equal(t, tt.tip, *decoded)
		})
	}
}

func TestUnmarshalTip_Truncated(t *testing.T) {
	tip := core.TipRecord{Id: 9, Text: "Stretch", Category: "fitness", Tags: []string{"a", "b"}}
	data := MarshalTip(&tip)

	for _, cut := range []int{0, 1, len(data) / 2, len(data) - 1} {
		_, err := UnmarshalTip(data[:cut])
		assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
	}
}

func TestUnmarshalTip_OversizedTagCount(t *testing.T) {
	// id 1, empty text, empty category, 200 tags, nothing else
	data := []byte{1, 0, 0, 200, 1}
	_, err := UnmarshalTip(data)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
