package citation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedContentBlocks_MarshalFlattensMetaAndBlocks(t *testing.T) {
	blocks := ExtractedContentBlocks{
		TotalContentCharacterLength: 42,
		Blocks: map[string]ContentBlock{
			"abc123def456": {
				Content:       "hello",
				ContentLength: 5,
				SourceLinks:   []SourceLink{{RawSourceLink: "[x](y.md)", SourceLine: 3}},
			},
		},
	}

	data, err := json.Marshal(blocks)
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &flat))

	var total int
	require.NoError(t, json.Unmarshal(flat["_totalContentCharacterLength"], &total))
	assert.Equal(t, 42, total)

	var block ContentBlock
	require.NoError(t, json.Unmarshal(flat["abc123def456"], &block))
	assert.Equal(t, "hello", block.Content)
}

func TestExtractedContentBlocks_RoundTrip(t *testing.T) {
	original := ExtractedContentBlocks{
		TotalContentCharacterLength: 10,
		Blocks: map[string]ContentBlock{
			"id1": {Content: "a", ContentLength: 1, SourceLinks: []SourceLink{{RawSourceLink: "r", SourceLine: 1}}},
			"id2": {Content: "b", ContentLength: 1, SourceLinks: []SourceLink{{RawSourceLink: "r2", SourceLine: 2}}},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ExtractedContentBlocks
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.TotalContentCharacterLength, decoded.TotalContentCharacterLength)
	assert.Equal(t, original.Blocks, decoded.Blocks)
}

func TestExtractedContentBlocks_EmptyBlocksStillCarriesMeta(t *testing.T) {
	blocks := ExtractedContentBlocks{TotalContentCharacterLength: 0, Blocks: map[string]ContentBlock{}}

	data, err := json.Marshal(blocks)
	require.NoError(t, err)
	assert.Contains(t, string(data), "_totalContentCharacterLength")
}
