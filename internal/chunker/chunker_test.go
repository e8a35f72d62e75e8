package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	chunks, err := Split("short document", 2500, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short document", chunks[0])
}

func TestSplitExactWindowSingleChunk(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 2500)
	chunks, err := Split(text, 2500, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitOverlappingWindows(t *testing.T) {
	t.Parallel()

	// 2600 chars with a 2500 window and 200 overlap: the second window
	// starts at 2300 and runs to the end.
	text := strings.Repeat("x", 2600)
	chunks, err := Split(text, 2500, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 2500)
	assert.Len(t, chunks[1], 300)
}

func TestSplitAdjacentChunksShareOverlap(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks, err := Split(text, 100, 20)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d should start with the last 20 chars of chunk %d", i, i-1)
	}
}

func TestSplitReconstruction(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("the quick brown fox ", 300)
	overlap := 50

	chunks, err := Split(text, 400, overlap)
	require.NoError(t, err)

	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		sb.WriteString(c[overlap:])
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitMultiByteRunesNeverSplit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("日本語の法律文書", 50)
	chunks, err := Split(text, 100, 10)
	require.NoError(t, err)

	for i, c := range chunks {
		assert.True(t, strings.ContainsRune("日本語の法律文書", []rune(c)[0]),
			"chunk %d starts mid-rune", i)
		assert.LessOrEqual(t, len([]rune(c)), 100)
	}
}

func TestSplitEmptyText(t *testing.T) {
	t.Parallel()

	chunks, err := Split("", 2500, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitZeroOverlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("z", 250)
	chunks, err := Split(text, 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestSplitInvalidParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		maxChars int
		overlap  int
		want     error
	}{
		{"zero window", 0, 0, ErrInvalidWindow},
		{"negative window", -1, 0, ErrInvalidWindow},
		{"negative overlap", 100, -1, ErrInvalidOverlap},
		{"overlap equals window", 100, 100, ErrInvalidOverlap},
		{"overlap exceeds window", 100, 150, ErrInvalidOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Split("some text", tt.maxChars, tt.overlap)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
