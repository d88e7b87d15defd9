package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDescriptionShortStaysWhole(t *testing.T) {
	text := "one two three four five six seven eight nine"
	d1, d2, d3 := SplitDescription(text)
	assert.Equal(t, text, d1)
	assert.Empty(t, d2)
	assert.Empty(t, d3)
}

func TestSplitDescriptionThirdsReconstruct(t *testing.T) {
	words := make([]string, 30)
	for i := range words {
		words[i] = string(rune('a' + i%26))
	}
	text := strings.Join(words, " ")

	d1, d2, d3 := SplitDescription(text)
	require.NotEmpty(t, d1)
	require.NotEmpty(t, d2)
	require.NotEmpty(t, d3)
	assert.Equal(t, text, d1+" "+d2+" "+d3)
	assert.Len(t, strings.Fields(d1), 10)
	assert.Len(t, strings.Fields(d2), 10)
	assert.Len(t, strings.Fields(d3), 10)
}

func TestSplitDescriptionRemainderGoesLast(t *testing.T) {
	text := strings.Repeat("w ", 10) + "x"
	d1, d2, d3 := SplitDescription(text)
	assert.Len(t, strings.Fields(d1), 3)
	assert.Len(t, strings.Fields(d2), 3)
	assert.Len(t, strings.Fields(d3), 5)
}

func TestCatalogProductImageFallback(t *testing.T) {
	assert.Equal(t, "thumb.png", CatalogProduct{Thumbnail: "thumb.png", Images: []string{"a.png"}}.Image())
	assert.Equal(t, "a.png", CatalogProduct{Images: []string{"a.png", "b.png"}}.Image())
	assert.Empty(t, CatalogProduct{}.Image())
}
