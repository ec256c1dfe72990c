package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFilter(t *testing.T) {
	pattern, ok := LookupFilter(LabelAgoda, "4 star")
	require.True(t, ok)
	assert.Equal(t, `[aria-label="4-Star rating"]`, pattern)

	pattern, ok = LookupFilter(LabelMMT, "free cancellation")
	require.True(t, ok)
	assert.Contains(t, pattern, "Free Cancellation")
}

// Unknown names are looked up and skipped, never an error: absent must be
// signalled by ok=false only.
func TestLookupFilterAbsent(t *testing.T) {
	_, ok := LookupFilter(LabelAgoda, "pet friendly pool")
	assert.False(t, ok)

	// Curated for Agoda but not for the UIKit sites.
	_, ok = LookupFilter(LabelExpedia, "secret deals")
	assert.False(t, ok)

	_, ok = LookupFilter("no-such-site", "4 star")
	assert.False(t, ok)
}

func TestEverySiteHasAFlowAndAFilterMap(t *testing.T) {
	for _, label := range []string{LabelAgoda, LabelMMT, LabelHotels, LabelExpedia} {
		flow, ok := ForSite(label)
		require.True(t, ok, label)
		assert.Equal(t, label, flow.Label())

		_, ok = filterMappings[label]
		assert.True(t, ok, label)
	}
}

func TestVocabularyIsSortedAndCoversAllSites(t *testing.T) {
	vocab := Vocabulary()
	require.NotEmpty(t, vocab)
	assert.IsType(t, []string{}, vocab)
	for i := 1; i < len(vocab); i++ {
		assert.LessOrEqual(t, vocab[i-1], vocab[i])
	}
	assert.Contains(t, vocab, "secret deals")
	assert.Contains(t, vocab, "less than 2km")
	assert.Contains(t, vocab, "free cancellation")
}
