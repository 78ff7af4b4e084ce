package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(stories ...string) *Catalog {
	return &Catalog{path: "test", stories: stories}
}

func TestDuplicatesFindsRepeatedStory(t *testing.T) {
	c := catalogOf(
		"The lighthouse keeper vanished during the storm of 1952, leaving his logbook open.",
		"A bank clerk embezzled millions over a decade before anyone noticed.",
		"The lighthouse keeper vanished during the storm of 1952 and left his logbook open.",
		"Hikers found an abandoned campsite with the tent slashed from inside.",
	)

	pairs := c.Duplicates(0.5)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].First)
	assert.Equal(t, 3, pairs[0].Second)
	assert.GreaterOrEqual(t, pairs[0].Score, 0.5)
	assert.LessOrEqual(t, pairs[0].Score, 1+1e-9)
}

func TestDuplicatesIgnoresSmallCatalogs(t *testing.T) {
	assert.Nil(t, catalogOf("only one").Duplicates(0.1))
	var nilCatalog *Catalog
	assert.Nil(t, nilCatalog.Duplicates(0.1))
}

func TestCosineOfIdenticalVectors(t *testing.T) {
	v := weigh(termCounts("river river stone"), map[string]float64{"river": 1, "stone": 2})
	assert.InDelta(t, 1, cosine(v, v), 1e-12)
	assert.Zero(t, cosine(v, termVector{}))
}

func TestTermsAreUnicodeAware(t *testing.T) {
	assert.Equal(t, []string{"élodie", "café", "9pm"}, terms("Élodie's café, at 9pm: ok"))
}

func TestWords(t *testing.T) {
	c := catalogOf("one two three", "four")
	assert.Equal(t, 3, c.Words(1))
	assert.Equal(t, 1, c.Words(2))
	assert.Equal(t, 0, c.Words(3))
}
